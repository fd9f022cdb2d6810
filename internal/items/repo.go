package items

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/internal/search"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
)

// Repository handles item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every item in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.Item, error) {
	var rows []models.Item
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByMerchant returns a merchant's items in insertion order.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads an item by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves the provided item.
func (r *Repository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindFirstMatching returns the first item satisfying the query. Name queries
// order by name ascending, price queries by unit price ascending.
func (r *Repository) FindFirstMatching(ctx context.Context, q search.Query) (*models.Item, error) {
	var item models.Item
	if err := r.searchScope(ctx, q).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAllMatching returns every item satisfying the query.
func (r *Repository) FindAllMatching(ctx context.Context, q search.Query) ([]models.Item, error) {
	var rows []models.Item
	if err := r.searchScope(ctx, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) searchScope(ctx context.Context, q search.Query) *gorm.DB {
	scope := r.db.WithContext(ctx).Model(&models.Item{})

	if q.Mode() == search.ModeName {
		fragment := "%" + strings.ToLower(q.Name) + "%"
		return scope.Where("LOWER(name) LIKE ?", fragment).Order("name ASC")
	}

	if q.MinPrice != nil {
		scope = scope.Where("unit_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		scope = scope.Where("unit_price <= ?", *q.MaxPrice)
	}
	return scope.Order("unit_price ASC")
}
