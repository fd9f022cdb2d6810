package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davenolan/littleshop-backend/api/responses"
	"github.com/davenolan/littleshop-backend/api/validators"
	couponsvc "github.com/davenolan/littleshop-backend/internal/coupons"
	"github.com/davenolan/littleshop-backend/pkg/enums"
	"github.com/davenolan/littleshop-backend/pkg/logger"
)

type createCouponRequest struct {
	Name          string          `json:"name" validate:"required"`
	Code          string          `json:"code" validate:"required"`
	DiscountType  string          `json:"discount_type" validate:"required,oneof=percent dollar"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"required"`
	Active        *bool           `json:"active,omitempty"`
	MerchantID    uuid.UUID       `json:"merchant_id" validate:"required"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
}

func ListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func CreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), couponsvc.CreateCouponInput{
			Name:          payload.Name,
			Code:          payload.Code,
			DiscountType:  enums.DiscountType(payload.DiscountType),
			DiscountValue: payload.DiscountValue,
			Active:        payload.Active,
			MerchantID:    payload.MerchantID,
			InvoiceID:     payload.InvoiceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// ToggleCoupon flips a coupon between active and inactive. Activation is
// subject to the merchant's active coupon ceiling.
func ToggleCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.ToggleActive(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func MerchantCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "merchantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByMerchant(r.Context(), id, r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
