package enums

import "fmt"

// CouponStatusFilter selects which coupons a listing returns.
type CouponStatusFilter string

const (
	CouponStatusFilterActive   CouponStatusFilter = "active"
	CouponStatusFilterInactive CouponStatusFilter = "inactive"
	CouponStatusFilterAll      CouponStatusFilter = "all"
)

var validCouponStatusFilters = []CouponStatusFilter{
	CouponStatusFilterActive,
	CouponStatusFilterInactive,
	CouponStatusFilterAll,
}

// String implements fmt.Stringer.
func (f CouponStatusFilter) String() string {
	return string(f)
}

// IsValid reports whether the value is a known CouponStatusFilter.
func (f CouponStatusFilter) IsValid() bool {
	for _, candidate := range validCouponStatusFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseCouponStatusFilter converts raw input into a CouponStatusFilter.
func ParseCouponStatusFilter(value string) (CouponStatusFilter, error) {
	for _, candidate := range validCouponStatusFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon status filter %q", value)
}

// ActiveFlag translates the filter into an optional boolean predicate.
// A nil result means no filtering.
func (f CouponStatusFilter) ActiveFlag() *bool {
	switch f {
	case CouponStatusFilterActive:
		v := true
		return &v
	case CouponStatusFilterInactive:
		v := false
		return &v
	default:
		return nil
	}
}
