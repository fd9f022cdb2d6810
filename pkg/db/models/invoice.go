package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davenolan/littleshop-backend/pkg/enums"
)

// Invoice links a customer purchase to a merchant. CouponID is nullable and
// carries a unique index: an invoice holds at most one coupon, and a coupon is
// attached to at most one invoice.
type Invoice struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status     enums.InvoiceStatus `gorm:"column:status;not null;default:'pending'"`
	MerchantID uuid.UUID           `gorm:"column:merchant_id;type:uuid;not null"`
	CustomerID uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CouponID   *uuid.UUID          `gorm:"column:coupon_id;type:uuid;uniqueIndex"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
