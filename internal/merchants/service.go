package merchants

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/internal/invoices"
	"github.com/davenolan/littleshop-backend/internal/search"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
)

// Service exposes merchant catalog operations, including the relationship
// reads that hang off a merchant (customers and invoices).
type Service interface {
	List(ctx context.Context) ([]MerchantDTO, error)
	ListSorted(ctx context.Context, order string) ([]MerchantDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*MerchantDTO, error)
	Create(ctx context.Context, input CreateMerchantInput) (*MerchantDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateMerchantInput) (*MerchantDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, values url.Values) (*MerchantDTO, error)
	FindAll(ctx context.Context, values url.Values) ([]MerchantDTO, error)
	Customers(ctx context.Context, merchantID uuid.UUID) ([]invoices.CustomerDTO, error)
	Invoices(ctx context.Context, merchantID uuid.UUID, status string) ([]invoices.InvoiceDTO, error)
}

type merchantRepository interface {
	List(ctx context.Context) ([]models.Merchant, error)
	ListSorted(ctx context.Context, descending bool) ([]models.Merchant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
	Create(ctx context.Context, merchant *models.Merchant) (*models.Merchant, error)
	Update(ctx context.Context, merchant *models.Merchant) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindFirstMatching(ctx context.Context, q search.Query) (*models.Merchant, error)
	FindAllMatching(ctx context.Context, q search.Query) ([]models.Merchant, error)
}

type invoiceReader interface {
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *enums.InvoiceStatus) ([]models.Invoice, error)
	CustomersByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Customer, error)
}

type service struct {
	repo        merchantRepository
	invoiceRepo invoiceReader
}

// NewService constructs a merchant service instance.
func NewService(repo merchantRepository, invoiceRepo invoiceReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("merchant repository required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	return &service{repo: repo, invoiceRepo: invoiceRepo}, nil
}

// List returns every merchant.
func (s *service) List(ctx context.Context) ([]MerchantDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchants")
	}
	return FromModels(rows), nil
}

// ListSorted returns merchants ordered by creation time. Order accepts "asc"
// or "desc" and defaults to ascending.
func (s *service) ListSorted(ctx context.Context, order string) ([]MerchantDTO, error) {
	descending := false
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
	case "desc":
		descending = true
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort order must be asc or desc").
			WithDetails(map[string]any{"field": "order"})
	}

	rows, err := s.repo.ListSorted(ctx, descending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchants sorted")
	}
	return FromModels(rows), nil
}

// Get returns a single merchant.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*MerchantDTO, error) {
	merchant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant")
	}
	return FromModel(merchant), nil
}

// Create persists a new merchant.
func (s *service) Create(ctx context.Context, input CreateMerchantInput) (*MerchantDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}

	created, err := s.repo.Create(ctx, &models.Merchant{Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert merchant")
	}
	return FromModel(created), nil
}

// Update renames an existing merchant.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateMerchantInput) (*MerchantDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}

	merchant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant")
	}

	merchant.Name = name
	if err := s.repo.Update(ctx, merchant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update merchant")
	}
	return FromModel(merchant), nil
}

// Delete removes a merchant. Items, invoices, and coupons owned by the
// merchant cascade away with it.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete merchant")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return nil
}

// FindOne returns the first merchant matching the name fragment, or nil when
// nothing matches. A miss is not an error.
func (s *service) FindOne(ctx context.Context, values url.Values) (*MerchantDTO, error) {
	q, err := search.ParseMerchantQuery(values)
	if err != nil {
		return nil, err
	}

	merchant, err := s.repo.FindFirstMatching(ctx, q)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant by name")
	}
	return FromModel(merchant), nil
}

// FindAll returns every merchant matching the name fragment.
func (s *service) FindAll(ctx context.Context, values url.Values) ([]MerchantDTO, error) {
	q, err := search.ParseMerchantQuery(values)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindAllMatching(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchants by name")
	}
	return FromModels(rows), nil
}

// Customers returns the distinct customers holding invoices with the merchant.
func (s *service) Customers(ctx context.Context, merchantID uuid.UUID) ([]invoices.CustomerDTO, error) {
	if err := s.ensureMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.CustomersByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchant customers")
	}
	return invoices.CustomersFromModels(rows), nil
}

// Invoices returns the merchant's invoices, optionally narrowed by status.
func (s *service) Invoices(ctx context.Context, merchantID uuid.UUID, status string) ([]invoices.InvoiceDTO, error) {
	// unknown status values fall through unfiltered
	var filter *enums.InvoiceStatus
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		if parsed, err := enums.ParseInvoiceStatus(trimmed); err == nil {
			filter = &parsed
		}
	}

	if err := s.ensureMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.ListByMerchant(ctx, merchantID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchant invoices")
	}
	return invoices.FromModels(rows), nil
}

func (s *service) ensureMerchant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find merchant")
	}
	return nil
}
