package items

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davenolan/littleshop-backend/internal/search"
	"github.com/davenolan/littleshop-backend/pkg/db/models"
	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
)

type fakeItemRepo struct {
	items     map[uuid.UUID]*models.Item
	lastQuery *search.Query
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uuid.UUID]*models.Item{}}
}

func (f *fakeItemRepo) List(ctx context.Context) ([]models.Item, error) {
	out := make([]models.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeItemRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Item, error) {
	var out []models.Item
	for _, item := range f.items {
		if item.MerchantID == merchantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if item, ok := f.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItemRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	item.ID = uuid.New()
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItemRepo) Update(ctx context.Context, item *models.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeItemRepo) FindFirstMatching(ctx context.Context, q search.Query) (*models.Item, error) {
	f.lastQuery = &q
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItemRepo) FindAllMatching(ctx context.Context, q search.Query) ([]models.Item, error) {
	f.lastQuery = &q
	return nil, nil
}

type fakeMerchantReader struct {
	merchants map[uuid.UUID]*models.Merchant
}

func (f *fakeMerchantReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	if merchant, ok := f.merchants[id]; ok {
		return merchant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newItemTestService(t *testing.T, repo *fakeItemRepo, merchants *fakeMerchantReader) Service {
	t.Helper()
	svc, err := NewService(repo, merchants)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateRejectsUnknownMerchant(t *testing.T) {
	svc := newItemTestService(t, newFakeItemRepo(), &fakeMerchantReader{})

	_, err := svc.Create(context.Background(), CreateItemInput{
		Name:       "widget",
		UnitPrice:  decimal.NewFromInt(10),
		MerchantID: uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	merchantID := uuid.New()
	merchants := &fakeMerchantReader{merchants: map[uuid.UUID]*models.Merchant{
		merchantID: {ID: merchantID, Name: "Loggins"},
	}}
	svc := newItemTestService(t, newFakeItemRepo(), merchants)

	_, err := svc.Create(context.Background(), CreateItemInput{
		Name:       "widget",
		UnitPrice:  decimal.NewFromInt(-1),
		MerchantID: merchantID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateMovesItemToExistingMerchantOnly(t *testing.T) {
	repo := newFakeItemRepo()
	oldMerchant := uuid.New()
	merchants := &fakeMerchantReader{merchants: map[uuid.UUID]*models.Merchant{
		oldMerchant: {ID: oldMerchant, Name: "Old"},
	}}
	svc := newItemTestService(t, repo, merchants)

	created, err := svc.Create(context.Background(), CreateItemInput{
		Name:       "widget",
		UnitPrice:  decimal.NewFromInt(10),
		MerchantID: oldMerchant,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ghost := uuid.New()
	_, err = svc.Update(context.Background(), created.ID, UpdateItemInput{MerchantID: &ghost})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindOneMissReturnsNil(t *testing.T) {
	repo := newFakeItemRepo()
	svc := newItemTestService(t, repo, &fakeMerchantReader{})

	dto, err := svc.FindOne(context.Background(), url.Values{"name": {"ghost"}})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if dto != nil {
		t.Fatalf("expected nil payload, got %+v", dto)
	}
	if repo.lastQuery == nil || repo.lastQuery.Name != "ghost" {
		t.Fatalf("expected name query to reach the repo, got %+v", repo.lastQuery)
	}
}

func TestFindAllRejectsMixedParameters(t *testing.T) {
	svc := newItemTestService(t, newFakeItemRepo(), &fakeMerchantReader{})

	_, err := svc.FindAll(context.Background(), url.Values{"name": {"x"}, "min_price": {"5"}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMerchantForItem(t *testing.T) {
	repo := newFakeItemRepo()
	merchantID := uuid.New()
	merchants := &fakeMerchantReader{merchants: map[uuid.UUID]*models.Merchant{
		merchantID: {ID: merchantID, Name: "Loggins"},
	}}
	svc := newItemTestService(t, repo, merchants)

	created, err := svc.Create(context.Background(), CreateItemInput{
		Name:       "widget",
		UnitPrice:  decimal.NewFromInt(10),
		MerchantID: merchantID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	merchant, err := svc.Merchant(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("merchant: %v", err)
	}
	if merchant.ID != merchantID {
		t.Fatalf("expected merchant %s, got %s", merchantID, merchant.ID)
	}

	_, err = svc.Merchant(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
