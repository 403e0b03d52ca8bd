package controllers

import (
	"net/http"
	"time"

	"github.com/fornodoro/backend/api/middleware"
	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	checkoutsvc "github.com/fornodoro/backend/internal/checkout"
	"github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type checkoutRequest struct {
	Address        string  `json:"address" validate:"required"`
	PaymentMethod  string  `json:"payment_method" validate:"required"`
	ChangeFor      *string `json:"change_for,omitempty"`
	CouponCode     *string `json:"coupon_code,omitempty"`
	PointsToRedeem int     `json:"points_to_redeem" validate:"min=0"`
	Observations   *string `json:"observations,omitempty"`
}

type checkoutResponse struct {
	Order      *orders.OrderDTO `json:"order"`
	PixPayload *string          `json:"pix_payload,omitempty"`
	PixExpires *time.Time       `json:"pix_expires_at,omitempty"`
}

// Checkout turns the session cart into an order for the authenticated user.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			SessionID:      sessionID,
			UserID:         middleware.UserUUIDFromContext(r.Context()),
			Address:        payload.Address,
			PaymentMethod:  method,
			ChangeFor:      payload.ChangeFor,
			CouponCode:     payload.CouponCode,
			PointsToRedeem: payload.PointsToRedeem,
			Observations:   payload.Observations,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:      orders.FromModel(result.Order),
			PixPayload: result.PixPayload,
			PixExpires: result.PixExpires,
		})
	}
}
