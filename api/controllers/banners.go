package controllers

import (
	"context"
	"net/http"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/internal/banners"
	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type settingsGetter interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

// ActiveBanners returns the storefront's active promo banners.
func ActiveBanners(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		items, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// StoreInfo returns the public storefront status and fees.
func StoreInfo(svc settingsGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		settings, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"store_name":      settings.StoreName,
			"is_open":         settings.IsOpen,
			"delivery_fee":    settings.DeliveryFee.StringFixed(2),
			"min_order_value": settings.MinOrderValue.StringFixed(2),
			"opening_hours":   settings.OpeningHours,
		})
	}
}
