package items

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/internal/merchants"
	"github.com/davenolan/littleshop-backend/internal/search"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
)

// Service exposes catalog item operations, including the find/find_all search
// endpoints and the item-to-merchant relationship read.
type Service interface {
	List(ctx context.Context) ([]ItemDTO, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, values url.Values) (*ItemDTO, error)
	FindAll(ctx context.Context, values url.Values) ([]ItemDTO, error)
	Merchant(ctx context.Context, itemID uuid.UUID) (*merchants.MerchantDTO, error)
}

type itemRepository interface {
	List(ctx context.Context) ([]models.Item, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindFirstMatching(ctx context.Context, q search.Query) (*models.Item, error)
	FindAllMatching(ctx context.Context, q search.Query) ([]models.Item, error)
}

type merchantReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

type service struct {
	repo         itemRepository
	merchantRepo merchantReader
}

// NewService constructs an item service instance.
func NewService(repo itemRepository, merchantRepo merchantReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if merchantRepo == nil {
		return nil, fmt.Errorf("merchant repository required")
	}
	return &service{repo: repo, merchantRepo: merchantRepo}, nil
}

// List returns every catalog item.
func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	return FromModels(rows), nil
}

// ListByMerchant returns the merchant's items.
func (s *service) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]ItemDTO, error) {
	if err := s.ensureMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchant items")
	}
	return FromModels(rows), nil
}

// Get returns a single item.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find item")
	}
	return FromModel(item), nil
}

// Create persists a new item after validating its merchant and price.
func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be less than 0").
			WithDetails(map[string]any{"field": "unit_price"})
	}
	if err := s.ensureMerchant(ctx, input.MerchantID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Item{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   input.UnitPrice,
		MerchantID:  input.MerchantID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return FromModel(created), nil
}

// Update applies the provided fields to an existing item.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find item")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
				WithDetails(map[string]any{"field": "name"})
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be less than 0").
				WithDetails(map[string]any{"field": "unit_price"})
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.MerchantID != nil {
		if err := s.ensureMerchant(ctx, *input.MerchantID); err != nil {
			return nil, err
		}
		item.MerchantID = *input.MerchantID
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return FromModel(item), nil
}

// Delete removes an item.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// FindOne returns the first item matching the query, or nil when nothing
// matches. A miss is not an error.
func (s *service) FindOne(ctx context.Context, values url.Values) (*ItemDTO, error) {
	q, err := search.ParseItemQuery(values)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindFirstMatching(ctx, q)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search items")
	}
	return FromModel(item), nil
}

// FindAll returns every item matching the query.
func (s *service) FindAll(ctx context.Context, values url.Values) ([]ItemDTO, error) {
	q, err := search.ParseItemQuery(values)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindAllMatching(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search items")
	}
	return FromModels(rows), nil
}

// Merchant returns the merchant that owns the item.
func (s *service) Merchant(ctx context.Context, itemID uuid.UUID) (*merchants.MerchantDTO, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find item")
	}

	merchant, err := s.merchantRepo.FindByID(ctx, item.MerchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant")
	}
	return merchants.FromModel(merchant), nil
}

func (s *service) ensureMerchant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.merchantRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant")
	}
	return nil
}
