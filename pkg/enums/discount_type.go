package enums

import "fmt"

// DiscountType distinguishes percentage coupons from flat dollar coupons.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeDollar  DiscountType = "dollar"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercent,
	DiscountTypeDollar,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
