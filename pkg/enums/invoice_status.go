package enums

import "fmt"

// InvoiceStatus tracks where an invoice sits in its fulfillment lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusShipped  InvoiceStatus = "shipped"
	InvoiceStatusReturned InvoiceStatus = "returned"
	InvoiceStatusPackaged InvoiceStatus = "packaged"
	InvoiceStatusPending  InvoiceStatus = "pending"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusShipped,
	InvoiceStatusReturned,
	InvoiceStatusPackaged,
	InvoiceStatusPending,
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
