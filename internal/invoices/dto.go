package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
)

// InvoiceDTO exposes invoice data in API responses.
type InvoiceDTO struct {
	ID         uuid.UUID           `json:"id"`
	Status     enums.InvoiceStatus `json:"status"`
	MerchantID uuid.UUID           `json:"merchant_id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	CouponID   *uuid.UUID          `json:"coupon_id"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// CustomerDTO exposes customer data in API responses. Customers are only
// reachable through a merchant's invoices.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persisted invoice into a DTO.
func FromModel(inv *models.Invoice) *InvoiceDTO {
	if inv == nil {
		return nil
	}
	return &InvoiceDTO{
		ID:         inv.ID,
		Status:     inv.Status,
		MerchantID: inv.MerchantID,
		CustomerID: inv.CustomerID,
		CouponID:   inv.CouponID,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// FromModels maps an invoice slice into DTOs, preserving order.
func FromModels(rows []models.Invoice) []InvoiceDTO {
	out := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// CustomerFromModel maps the persisted customer into a DTO.
func CustomerFromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CustomersFromModels maps a customer slice into DTOs, preserving order.
func CustomersFromModels(rows []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CustomerFromModel(&rows[i]))
	}
	return out
}
