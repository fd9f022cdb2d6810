package coupons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
)

// Repository handles coupon persistence. The WithTx variants run against an
// open transaction so the uniqueness and ceiling checks stay consistent with
// the write they guard.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to coupon operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a coupon by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByIDWithTx loads a coupon inside an open transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := tx.First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ListByActiveFlag returns coupons filtered by the active flag. A nil flag
// returns everything.
func (r *Repository) ListByActiveFlag(ctx context.Context, active *bool) ([]models.Coupon, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if active != nil {
		q = q.Where("active = ?", *active)
	}
	var rows []models.Coupon
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByMerchant returns a merchant's coupons, optionally filtered by the
// active flag.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, active *bool) ([]models.Coupon, error) {
	q := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC")
	if active != nil {
		q = q.Where("active = ?", *active)
	}
	var rows []models.Coupon
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsByCodeWithTx reports whether any coupon already carries the code.
// Codes are unique system-wide, across all merchants.
func (r *Repository) ExistsByCodeWithTx(tx *gorm.DB, code string) (bool, error) {
	var count int64
	err := tx.Model(&models.Coupon{}).
		Where("LOWER(code) = LOWER(?)", code).
		Count(&count).Error
	return count > 0, err
}

// NameMatchesCodeWithTx reports whether the merchant already has a coupon
// whose code equals the proposed name. Keeps a merchant's names and codes
// from shadowing each other.
func (r *Repository) NameMatchesCodeWithTx(tx *gorm.DB, merchantID uuid.UUID, name string) (bool, error) {
	var count int64
	err := tx.Model(&models.Coupon{}).
		Where("merchant_id = ?", merchantID).
		Where("LOWER(code) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// CountActiveByMerchantWithTx counts the merchant's active coupons inside an
// open transaction. The exclude ID, when set, leaves a specific coupon out of
// the count so a toggle does not count itself.
func (r *Repository) CountActiveByMerchantWithTx(tx *gorm.DB, merchantID uuid.UUID, exclude *uuid.UUID) (int64, error) {
	q := tx.Model(&models.Coupon{}).
		Where("merchant_id = ?", merchantID).
		Where("active = ?", true)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// CreateWithTx inserts a coupon inside an open transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, coupon *models.Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	return tx.Create(coupon).Error
}

// SaveWithTx persists coupon mutations inside an open transaction.
func (r *Repository) SaveWithTx(tx *gorm.DB, coupon *models.Coupon) error {
	return tx.Save(coupon).Error
}

// InvoiceRefsByCoupon maps each coupon ID to the invoice referencing it. A
// coupon is attached to at most one invoice, so usage counts fall out of the
// same lookup.
func (r *Repository) InvoiceRefsByCoupon(ctx context.Context, couponIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	refs := make(map[uuid.UUID]uuid.UUID, len(couponIDs))
	if len(couponIDs) == 0 {
		return refs, nil
	}

	var rows []models.Invoice
	err := r.db.WithContext(ctx).
		Select("id", "coupon_id").
		Where("coupon_id IN ?", couponIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.CouponID != nil {
			refs[*row.CouponID] = row.ID
		}
	}
	return refs, nil
}
