package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is the root aggregate for items, invoices, and coupons.
type Merchant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Items     []Item    `gorm:"foreignKey:MerchantID;constraint:OnDelete:CASCADE"`
	Invoices  []Invoice `gorm:"foreignKey:MerchantID;constraint:OnDelete:CASCADE"`
	Coupons   []Coupon  `gorm:"foreignKey:MerchantID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
