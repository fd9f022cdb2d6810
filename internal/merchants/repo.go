package merchants

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/internal/search"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
)

// Repository handles merchant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to merchant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every merchant in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.Merchant, error) {
	var rows []models.Merchant
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSorted returns merchants ordered by creation time.
func (r *Repository) ListSorted(ctx context.Context, descending bool) ([]models.Merchant, error) {
	order := "created_at ASC"
	if descending {
		order = "created_at DESC"
	}
	var rows []models.Merchant
	if err := r.db.WithContext(ctx).Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a merchant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

// Exists reports whether the merchant row is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Create persists a new merchant row.
func (r *Repository) Create(ctx context.Context, merchant *models.Merchant) (*models.Merchant, error) {
	if merchant.ID == uuid.Nil {
		merchant.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(merchant).Error; err != nil {
		return nil, err
	}
	return merchant, nil
}

// Update saves the provided merchant.
func (r *Repository) Update(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}

// Delete removes a merchant; owned items, invoices, and coupons cascade at the
// schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Merchant{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindFirstMatching returns the first merchant whose name contains the
// fragment, ordered by name ascending.
func (r *Repository) FindFirstMatching(ctx context.Context, q search.Query) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.nameScope(ctx, q).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

// FindAllMatching returns every merchant whose name contains the fragment,
// ordered by name ascending.
func (r *Repository) FindAllMatching(ctx context.Context, q search.Query) ([]models.Merchant, error) {
	var rows []models.Merchant
	if err := r.nameScope(ctx, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) nameScope(ctx context.Context, q search.Query) *gorm.DB {
	fragment := "%" + strings.ToLower(q.Name) + "%"
	return r.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Where("LOWER(name) LIKE ?", fragment).
		Order("name ASC")
}
