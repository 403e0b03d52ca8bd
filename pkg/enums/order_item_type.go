package enums

import "fmt"

// OrderItemType discriminates the two cart line variants snapshotted into an
// order: a configured pizza or a simple catalog product.
type OrderItemType string

const (
	OrderItemTypePizza   OrderItemType = "pizza"
	OrderItemTypeProduct OrderItemType = "product"
)

var validOrderItemTypes = []OrderItemType{
	OrderItemTypePizza,
	OrderItemTypeProduct,
}

// String implements fmt.Stringer.
func (t OrderItemType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderItemType.
func (t OrderItemType) IsValid() bool {
	for _, candidate := range validOrderItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderItemType converts raw input into an OrderItemType.
func ParseOrderItemType(value string) (OrderItemType, error) {
	for _, candidate := range validOrderItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item type %q", value)
}
