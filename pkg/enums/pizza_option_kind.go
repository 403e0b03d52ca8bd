package enums

import "fmt"

// PizzaOptionKind classifies configurable pizza add-ons and variants.
type PizzaOptionKind string

const (
	PizzaOptionSize  PizzaOptionKind = "size"
	PizzaOptionCrust PizzaOptionKind = "crust"
	PizzaOptionDough PizzaOptionKind = "dough"
	PizzaOptionExtra PizzaOptionKind = "extra"
)

var validPizzaOptionKinds = []PizzaOptionKind{
	PizzaOptionSize,
	PizzaOptionCrust,
	PizzaOptionDough,
	PizzaOptionExtra,
}

// String implements fmt.Stringer.
func (k PizzaOptionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PizzaOptionKind.
func (k PizzaOptionKind) IsValid() bool {
	for _, candidate := range validPizzaOptionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePizzaOptionKind converts raw input into a PizzaOptionKind.
func ParsePizzaOptionKind(value string) (PizzaOptionKind, error) {
	for _, candidate := range validPizzaOptionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pizza option kind %q", value)
}
