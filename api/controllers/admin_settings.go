package controllers

import (
	"net/http"
	"time"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	"github.com/fornodoro/backend/internal/settings"
	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type settingsResponse struct {
	StoreName     string    `json:"store_name"`
	DeliveryFee   string    `json:"delivery_fee"`
	MinOrderValue string    `json:"min_order_value"`
	IsOpen        bool      `json:"is_open"`
	OpeningHours  *string   `json:"opening_hours,omitempty"`
	WhatsAppPhone *string   `json:"whatsapp_phone,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toSettingsResponse(s *models.StoreSettings) settingsResponse {
	return settingsResponse{
		StoreName:     s.StoreName,
		DeliveryFee:   s.DeliveryFee.StringFixed(2),
		MinOrderValue: s.MinOrderValue.StringFixed(2),
		IsOpen:        s.IsOpen,
		OpeningHours:  s.OpeningHours,
		WhatsAppPhone: s.WhatsAppPhone,
		UpdatedAt:     s.UpdatedAt,
	}
}

type updateSettingsRequest struct {
	StoreName     *string `json:"store_name,omitempty"`
	DeliveryFee   *string `json:"delivery_fee,omitempty"`
	MinOrderValue *string `json:"min_order_value,omitempty"`
	IsOpen        *bool   `json:"is_open,omitempty"`
	OpeningHours  *string `json:"opening_hours,omitempty"`
	WhatsAppPhone *string `json:"whatsapp_phone,omitempty"`
}

func (r updateSettingsRequest) toInput() settings.UpdateInput {
	return settings.UpdateInput{
		StoreName:     r.StoreName,
		DeliveryFee:   r.DeliveryFee,
		MinOrderValue: r.MinOrderValue,
		IsOpen:        r.IsOpen,
		OpeningHours:  r.OpeningHours,
		WhatsAppPhone: r.WhatsAppPhone,
	}
}

// AdminGetSettings returns the editable storefront configuration.
func AdminGetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		current, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSettingsResponse(current))
	}
}

// AdminUpdateSettings applies a partial update to the storefront configuration.
func AdminUpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSettingsResponse(updated))
	}
}
