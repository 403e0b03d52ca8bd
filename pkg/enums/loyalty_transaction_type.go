package enums

import "fmt"

// LoyaltyTransactionType classifies entries in the loyalty ledger.
type LoyaltyTransactionType string

const (
	LoyaltyTransactionTypeEarn   LoyaltyTransactionType = "earn"
	LoyaltyTransactionTypeRedeem LoyaltyTransactionType = "redeem"
)

var validLoyaltyTransactionTypes = []LoyaltyTransactionType{
	LoyaltyTransactionTypeEarn,
	LoyaltyTransactionTypeRedeem,
}

// String implements fmt.Stringer.
func (t LoyaltyTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LoyaltyTransactionType.
func (t LoyaltyTransactionType) IsValid() bool {
	for _, candidate := range validLoyaltyTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLoyaltyTransactionType converts raw input into a LoyaltyTransactionType.
func ParseLoyaltyTransactionType(value string) (LoyaltyTransactionType, error) {
	for _, candidate := range validLoyaltyTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loyalty transaction type %q", value)
}
