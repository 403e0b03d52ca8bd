package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	"github.com/fornodoro/backend/internal/coupons"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type couponRequest struct {
	Code          string    `json:"code" validate:"required"`
	DiscountType  string    `json:"discount_type" validate:"required"`
	DiscountValue string    `json:"discount_value" validate:"required"`
	MinOrderValue string    `json:"min_order_value"`
	MaxUses       int       `json:"max_uses" validate:"required,min=1"`
	ValidFrom     time.Time `json:"valid_from" validate:"required"`
	ValidUntil    time.Time `json:"valid_until" validate:"required"`
	IsActive      *bool     `json:"is_active,omitempty"`
}

func (r couponRequest) toInput() (coupons.CouponInput, error) {
	discountType, err := enums.ParseDiscountType(r.DiscountType)
	if err != nil {
		return coupons.CouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	minOrder := r.MinOrderValue
	if strings.TrimSpace(minOrder) == "" {
		minOrder = "0"
	}
	return coupons.CouponInput{
		Code:          r.Code,
		DiscountType:  discountType,
		DiscountValue: r.DiscountValue,
		MinOrderValue: minOrder,
		MaxUses:       r.MaxUses,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		IsActive:      r.IsActive,
	}, nil
}

type couponResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	MinOrderValue string    `json:"min_order_value"`
	MaxUses       int       `json:"max_uses"`
	CurrentUses   int       `json:"current_uses"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	IsActive      bool      `json:"is_active"`
}

func toCouponResponse(coupon *models.Coupon) couponResponse {
	return couponResponse{
		ID:            coupon.ID,
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType.String(),
		DiscountValue: coupon.DiscountValue.StringFixed(2),
		MinOrderValue: coupon.MinOrderValue.StringFixed(2),
		MaxUses:       coupon.MaxUses,
		CurrentUses:   coupon.CurrentUses,
		ValidFrom:     coupon.ValidFrom,
		ValidUntil:    coupon.ValidUntil,
		IsActive:      coupon.IsActive,
	}
}

// AdminListCoupons returns all coupons for the back-office.
func AdminListCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		includeInactive := true
		if raw := strings.TrimSpace(r.URL.Query().Get("includeInactive")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid includeInactive value"))
				return
			}
			includeInactive = value
		}

		items, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]couponResponse, 0, len(items))
		for i := range items {
			out = append(out, toCouponResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminCreateCoupon creates a coupon.
func AdminCreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCouponResponse(coupon))
	}
}

// AdminUpdateCoupon updates a coupon in place.
func AdminUpdateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		couponID, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCouponResponse(coupon))
	}
}

// AdminDeleteCoupon removes a coupon.
func AdminDeleteCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		couponID, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
