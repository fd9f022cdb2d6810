package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
)

// Repository handles invoice and customer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to invoice operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads an invoice by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByIDWithTx loads an invoice inside an open transaction, locking the row
// against concurrent coupon attachment.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// AttachCouponWithTx links a coupon to an invoice inside an open transaction.
// The partial unique index on coupon_id backstops concurrent attachments.
func (r *Repository) AttachCouponWithTx(tx *gorm.DB, invoiceID, couponID uuid.UUID) error {
	return tx.Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Update("coupon_id", couponID).Error
}

// ListByMerchant returns a merchant's invoices, optionally narrowed to a
// single status.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *enums.InvoiceStatus) ([]models.Invoice, error) {
	q := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Invoice
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomersByMerchant returns the distinct customers that hold invoices with
// the merchant.
func (r *Repository) CustomersByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Distinct("customers.*").
		Joins("JOIN invoices ON invoices.customer_id = customers.id").
		Where("invoices.merchant_id = ?", merchantID).
		Order("customers.last_name ASC, customers.first_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
