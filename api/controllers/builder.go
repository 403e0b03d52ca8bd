package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	"github.com/fornodoro/backend/internal/builder"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type builderSelectionRequest struct {
	SizeID       uuid.UUID   `json:"size_id" validate:"required"`
	FlavorIDs    []uuid.UUID `json:"flavor_ids" validate:"required,min=1"`
	CrustID      *uuid.UUID  `json:"crust_id,omitempty"`
	DoughID      *uuid.UUID  `json:"dough_id,omitempty"`
	ExtraIDs     []uuid.UUID `json:"extra_ids,omitempty"`
	Quantity     int         `json:"quantity" validate:"required,min=1"`
	Observations *string     `json:"observations,omitempty"`
}

func (r builderSelectionRequest) toSelection() builder.Selection {
	return builder.Selection{
		SizeID:       r.SizeID,
		FlavorIDs:    r.FlavorIDs,
		CrustID:      r.CrustID,
		DoughID:      r.DoughID,
		ExtraIDs:     r.ExtraIDs,
		Quantity:     r.Quantity,
		Observations: r.Observations,
	}
}

// BuilderQuote prices a wizard selection without touching the cart.
func BuilderQuote(svc builder.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "builder service unavailable"))
			return
		}

		var payload builderSelectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), payload.toSelection())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
