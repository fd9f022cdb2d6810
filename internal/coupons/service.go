package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/pkg/db"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
)

// maxActivePerMerchant caps how many active coupons a merchant may hold at
// once. Creation and activation both enforce it inside the same transaction
// that writes the row.
const maxActivePerMerchant = 5

// Service exposes the coupon eligibility engine.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*CouponDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CouponDTO, error)
	List(ctx context.Context, status string) ([]CouponDTO, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, status string) ([]CouponDTO, error)
}

type couponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Coupon, error)
	ListByActiveFlag(ctx context.Context, active *bool) ([]models.Coupon, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, active *bool) ([]models.Coupon, error)
	ExistsByCodeWithTx(tx *gorm.DB, code string) (bool, error)
	NameMatchesCodeWithTx(tx *gorm.DB, merchantID uuid.UUID, name string) (bool, error)
	CountActiveByMerchantWithTx(tx *gorm.DB, merchantID uuid.UUID, exclude *uuid.UUID) (int64, error)
	CreateWithTx(tx *gorm.DB, coupon *models.Coupon) error
	SaveWithTx(tx *gorm.DB, coupon *models.Coupon) error
	InvoiceRefsByCoupon(ctx context.Context, couponIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

type invoiceAttacher interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Invoice, error)
	AttachCouponWithTx(tx *gorm.DB, invoiceID, couponID uuid.UUID) error
}

type merchantChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo         couponRepository
	invoiceRepo  invoiceAttacher
	merchantRepo merchantChecker
	tx           transactor
}

// NewService constructs a coupon service instance.
func NewService(repo couponRepository, invoiceRepo invoiceAttacher, merchantRepo merchantChecker, tx transactor) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if merchantRepo == nil {
		return nil, fmt.Errorf("merchant repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transactor required")
	}
	return &service{
		repo:         repo,
		invoiceRepo:  invoiceRepo,
		merchantRepo: merchantRepo,
		tx:           tx,
	}, nil
}

// Create validates and persists a new coupon. The uniqueness and ceiling
// checks run inside the transaction that inserts the row, and the optional
// invoice attachment commits or rolls back with it.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required").
			WithDetails(map[string]any{"field": "code"})
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_type must be percent or dollar").
			WithDetails(map[string]any{"field": "discount_type"})
	}
	if !input.DiscountValue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be greater than 0").
			WithDetails(map[string]any{"field": "discount_value"})
	}

	exists, err := s.merchantRepo.Exists(ctx, input.MerchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check merchant")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	coupon := &models.Coupon{
		Name:          name,
		Code:          code,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		Active:        active,
		MerchantID:    input.MerchantID,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		taken, err := s.repo.ExistsByCodeWithTx(tx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check coupon code")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "coupon code already in use").
				WithDetails(map[string]any{"field": "code"})
		}

		shadowed, err := s.repo.NameMatchesCodeWithTx(tx, input.MerchantID, name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check coupon name")
		}
		if shadowed {
			return pkgerrors.New(pkgerrors.CodeConflict, "coupon name matches an existing code for this merchant").
				WithDetails(map[string]any{"field": "name"})
		}

		if active {
			count, err := s.repo.CountActiveByMerchantWithTx(tx, input.MerchantID, nil)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count active coupons")
			}
			if count >= maxActivePerMerchant {
				return pkgerrors.New(pkgerrors.CodeConflict, "active coupon limit reached").
					WithDetails(map[string]any{"limit": maxActivePerMerchant})
			}
		}

		if err := s.repo.CreateWithTx(tx, coupon); err != nil {
			// unique index backstop for concurrent inserts of the same code
			if db.IsUniqueViolation(err, "idx_coupons_code") {
				return pkgerrors.New(pkgerrors.CodeConflict, "coupon code already in use").
					WithDetails(map[string]any{"field": "code"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert coupon")
		}

		if input.InvoiceID != nil {
			if err := s.attachInvoice(tx, coupon, *input.InvoiceID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}

	timesUsed := 0
	if input.InvoiceID != nil {
		timesUsed = 1
	}
	return newDTO(coupon, input.InvoiceID, timesUsed), nil
}

func (s *service) attachInvoice(tx *gorm.DB, coupon *models.Coupon, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDWithTx(tx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find invoice")
	}
	if invoice.MerchantID != coupon.MerchantID {
		return pkgerrors.New(pkgerrors.CodeConflict, "invoice belongs to a different merchant").
			WithDetails(map[string]any{"field": "invoice_id"})
	}
	if invoice.CouponID != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "invoice already has a coupon").
			WithDetails(map[string]any{"field": "invoice_id"})
	}

	if err := s.invoiceRepo.AttachCouponWithTx(tx, invoice.ID, coupon.ID); err != nil {
		if db.IsUniqueViolation(err, "idx_invoices_coupon_id") {
			return pkgerrors.New(pkgerrors.CodeConflict, "coupon is already attached to an invoice").
				WithDetails(map[string]any{"field": "invoice_id"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach coupon")
	}
	return nil
}

// ToggleActive flips a coupon's active flag. Activation re-checks the
// merchant ceiling inside the transaction so a merchant can never exceed the
// cap through concurrent toggles.
func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*CouponDTO, error) {
	var toggled *models.Coupon
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		coupon, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find coupon")
		}

		if !coupon.Active {
			count, err := s.repo.CountActiveByMerchantWithTx(tx, coupon.MerchantID, &coupon.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count active coupons")
			}
			if count >= maxActivePerMerchant {
				return pkgerrors.New(pkgerrors.CodeConflict, "active coupon limit reached").
					WithDetails(map[string]any{"limit": maxActivePerMerchant})
			}
		}

		coupon.Active = !coupon.Active
		if err := s.repo.SaveWithTx(tx, coupon); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save coupon")
		}
		toggled = coupon
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle coupon")
	}

	return s.enrichOne(ctx, toggled)
}

// Get returns a single coupon with its invoice linkage and usage count.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*CouponDTO, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find coupon")
	}
	return s.enrichOne(ctx, coupon)
}

// List returns coupons across all merchants, filtered by status: active,
// inactive, or all. An empty status means all.
func (s *service) List(ctx context.Context, status string) ([]CouponDTO, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByActiveFlag(ctx, filter.ActiveFlag())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list coupons")
	}
	return s.enrichMany(ctx, rows)
}

// ListByMerchant returns a merchant's coupons, filtered by status.
func (s *service) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status string) ([]CouponDTO, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	exists, err := s.merchantRepo.Exists(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check merchant")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	rows, err := s.repo.ListByMerchant(ctx, merchantID, filter.ActiveFlag())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list merchant coupons")
	}
	return s.enrichMany(ctx, rows)
}

func parseStatusFilter(status string) (enums.CouponStatusFilter, error) {
	trimmed := strings.TrimSpace(status)
	if trimmed == "" {
		return enums.CouponStatusFilterAll, nil
	}
	filter, err := enums.ParseCouponStatusFilter(trimmed)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "status must be one of active, inactive, all").
			WithDetails(map[string]any{"field": "status"})
	}
	return filter, nil
}

func (s *service) enrichOne(ctx context.Context, coupon *models.Coupon) (*CouponDTO, error) {
	refs, err := s.repo.InvoiceRefsByCoupon(ctx, []uuid.UUID{coupon.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load invoice refs")
	}
	return dtoWithRefs(coupon, refs), nil
}

func (s *service) enrichMany(ctx context.Context, rows []models.Coupon) ([]CouponDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	refs, err := s.repo.InvoiceRefsByCoupon(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load invoice refs")
	}

	out := make([]CouponDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *dtoWithRefs(&rows[i], refs))
	}
	return out, nil
}

func dtoWithRefs(coupon *models.Coupon, refs map[uuid.UUID]uuid.UUID) *CouponDTO {
	var invoiceID *uuid.UUID
	timesUsed := 0
	if ref, ok := refs[coupon.ID]; ok {
		id := ref
		invoiceID = &id
		timesUsed = 1
	}
	return newDTO(coupon, invoiceID, timesUsed)
}
