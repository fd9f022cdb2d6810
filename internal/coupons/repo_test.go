package coupons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/pkg/db/models"
	"github.com/davenolan/littleshop-backend/pkg/enums"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS merchants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  discount_type TEXT NOT NULL,
  discount_value NUMERIC NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  merchant_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  merchant_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  coupon_id TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateCouponMerchant(t *testing.T, db *gorm.DB) *models.Merchant {
	t.Helper()
	merchant := &models.Merchant{ID: uuid.New(), Name: "Coupon Merchant"}
	require.NoError(t, db.Create(merchant).Error)
	return merchant
}

func mustCreateCoupon(t *testing.T, db *gorm.DB, merchantID uuid.UUID, code string, active bool) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "Coupon " + code,
		Code:          code,
		DiscountType:  enums.DiscountTypePercent,
		DiscountValue: decimal.NewFromInt(10),
		Active:        active,
		MerchantID:    merchantID,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func TestRepositoryCodeLookupIsCaseInsensitive(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)

	merchant := mustCreateCouponMerchant(t, db)
	mustCreateCoupon(t, db, merchant.ID, "BOGO50-case", true)

	taken, err := repo.ExistsByCodeWithTx(db, "bogo50-CASE")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.ExistsByCodeWithTx(db, "bogo50-missing")
	require.NoError(t, err)
	require.False(t, taken)
}

func TestRepositoryCountActiveExcludesCoupon(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)

	merchant := mustCreateCouponMerchant(t, db)
	kept := mustCreateCoupon(t, db, merchant.ID, "COUNT-A", true)
	mustCreateCoupon(t, db, merchant.ID, "COUNT-B", true)
	mustCreateCoupon(t, db, merchant.ID, "COUNT-C", false)

	count, err := repo.CountActiveByMerchantWithTx(db, merchant.ID, nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	count, err = repo.CountActiveByMerchantWithTx(db, merchant.ID, &kept.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestRepositoryListByMerchantFiltersActive(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchant := mustCreateCouponMerchant(t, db)
	on := mustCreateCoupon(t, db, merchant.ID, "LIST-ON", true)
	off := mustCreateCoupon(t, db, merchant.ID, "LIST-OFF", false)

	active := true
	rows, err := repo.ListByMerchant(ctx, merchant.ID, &active)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, on.ID, rows[0].ID)

	inactive := false
	rows, err = repo.ListByMerchant(ctx, merchant.ID, &inactive)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, off.ID, rows[0].ID)

	rows, err = repo.ListByMerchant(ctx, merchant.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestRepositoryInvoiceRefs(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchant := mustCreateCouponMerchant(t, db)
	used := mustCreateCoupon(t, db, merchant.ID, "REF-USED", true)
	unused := mustCreateCoupon(t, db, merchant.ID, "REF-UNUSED", true)

	customer := &models.Customer{ID: uuid.New(), FirstName: "Ref", LastName: "Customer"}
	require.NoError(t, db.Create(customer).Error)

	invoice := &models.Invoice{
		ID:         uuid.New(),
		Status:     enums.InvoiceStatusPending,
		MerchantID: merchant.ID,
		CustomerID: customer.ID,
		CouponID:   &used.ID,
	}
	require.NoError(t, db.Create(invoice).Error)

	refs, err := repo.InvoiceRefsByCoupon(ctx, []uuid.UUID{used.ID, unused.ID})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, invoice.ID, refs[used.ID])
}
