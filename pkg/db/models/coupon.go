package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davenolan/littleshop-backend/pkg/enums"
)

// Coupon is a merchant promotion. Codes are unique system-wide; the active
// flag feeds the per-merchant ceiling enforced by the coupons service.
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	Active        bool               `gorm:"column:active;not null;default:true"`
	MerchantID    uuid.UUID          `gorm:"column:merchant_id;type:uuid;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
