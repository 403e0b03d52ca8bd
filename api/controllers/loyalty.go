package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/middleware"
	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/internal/loyalty"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type loyaltyEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Points      int        `json:"points"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoyaltyBalance returns the customer's current point balance.
func LoyaltyBalance(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loyalty service unavailable"))
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		balance, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"balance": balance})
	}
}

// LoyaltyHistory returns the customer's ledger entries, newest first.
func LoyaltyHistory(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loyalty service unavailable"))
			return
		}

		limit, offset, ok := pageParams(w, r, logg)
		if !ok {
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		entries, err := svc.History(r.Context(), userID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]loyaltyEntryResponse, 0, len(entries))
		for _, entry := range entries {
			items = append(items, loyaltyEntryResponse{
				ID:          entry.ID,
				Points:      entry.Points,
				Type:        entry.Type.String(),
				Description: entry.Description,
				OrderID:     entry.OrderID,
				CreatedAt:   entry.CreatedAt,
			})
		}
		responses.WriteSuccess(w, items)
	}
}
