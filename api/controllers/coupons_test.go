package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	couponsvc "github.com/davenolan/littleshop-backend/internal/coupons"
	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
	"github.com/davenolan/littleshop-backend/pkg/logger"
)

type stubCouponService struct {
	createErr  error
	toggleErr  error
	getErr     error
	created    *couponsvc.CouponDTO
	lastStatus string
}

func (s *stubCouponService) Create(ctx context.Context, input couponsvc.CreateCouponInput) (*couponsvc.CouponDTO, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	dto := &couponsvc.CouponDTO{
		ID:         uuid.New(),
		Name:       input.Name,
		Code:       input.Code,
		Active:     true,
		MerchantID: input.MerchantID,
	}
	s.created = dto
	return dto, nil
}

func (s *stubCouponService) ToggleActive(ctx context.Context, id uuid.UUID) (*couponsvc.CouponDTO, error) {
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	return &couponsvc.CouponDTO{ID: id, Active: false}, nil
}

func (s *stubCouponService) Get(ctx context.Context, id uuid.UUID) (*couponsvc.CouponDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &couponsvc.CouponDTO{ID: id}, nil
}

func (s *stubCouponService) List(ctx context.Context, status string) ([]couponsvc.CouponDTO, error) {
	s.lastStatus = status
	return nil, nil
}

func (s *stubCouponService) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status string) ([]couponsvc.CouponDTO, error) {
	s.lastStatus = status
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withCouponParam(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("couponId", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestCreateCouponReturns201(t *testing.T) {
	stub := &stubCouponService{}
	body := `{
		"name": "Ten Off",
		"code": "TEN",
		"discount_type": "percent",
		"discount_value": 10,
		"merchant_id": "` + uuid.NewString() + `"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateCoupon(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data couponsvc.CouponDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Code != "TEN" {
		t.Fatalf("unexpected coupon code %q", envelope.Data.Code)
	}
}

func TestCreateCouponRejectsBadDiscountType(t *testing.T) {
	stub := &stubCouponService{}
	body := `{
		"name": "Ten Off",
		"code": "TEN",
		"discount_type": "loyalty",
		"discount_value": 10,
		"merchant_id": "` + uuid.NewString() + `"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateCoupon(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.created != nil {
		t.Fatal("service should not have been called")
	}
}

func TestCreateCouponConflictMaps409(t *testing.T) {
	stub := &stubCouponService{
		createErr: pkgerrors.New(pkgerrors.CodeConflict, "coupon code already in use"),
	}
	body := `{
		"name": "Ten Off",
		"code": "TEN",
		"discount_type": "percent",
		"discount_value": 10,
		"merchant_id": "` + uuid.NewString() + `"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateCoupon(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "coupon code already in use" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestToggleCouponRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/coupons/nope/toggle", nil)
	req = withCouponParam(req, "nope")
	rec := httptest.NewRecorder()

	ToggleCoupon(&stubCouponService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCouponNotFoundMaps404(t *testing.T) {
	id := uuid.New()
	stub := &stubCouponService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/coupons/"+id.String(), nil)
	req = withCouponParam(req, id.String())
	rec := httptest.NewRecorder()

	GetCoupon(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListCouponsForwardsStatusFilter(t *testing.T) {
	stub := &stubCouponService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/coupons?status=inactive", nil)
	rec := httptest.NewRecorder()

	ListCoupons(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastStatus != "inactive" {
		t.Fatalf("expected status filter to reach the service, got %q", stub.lastStatus)
	}
}
