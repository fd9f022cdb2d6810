package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
)

// CouponDTO exposes coupon data in API responses. InvoiceID and TimesUsed are
// derived from the invoice that references the coupon, not stored on the
// coupon row itself.
type CouponDTO struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Active        bool               `json:"active"`
	MerchantID    uuid.UUID          `json:"merchant_id"`
	InvoiceID     *uuid.UUID         `json:"invoice_id"`
	TimesUsed     int                `json:"times_used"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CreateCouponInput holds creation-time data for a new coupon. InvoiceID, when
// set, attaches the coupon to that invoice in the same transaction.
type CreateCouponInput struct {
	Name          string
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Active        *bool
	MerchantID    uuid.UUID
	InvoiceID     *uuid.UUID
}

func newDTO(c *models.Coupon, invoiceID *uuid.UUID, timesUsed int) *CouponDTO {
	if c == nil {
		return nil
	}
	return &CouponDTO{
		ID:            c.ID,
		Name:          c.Name,
		Code:          c.Code,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Active:        c.Active,
		MerchantID:    c.MerchantID,
		InvoiceID:     invoiceID,
		TimesUsed:     timesUsed,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
