package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/middleware"
	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	ordersvc "github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/internal/relay"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type orderPageResponse struct {
	Items []ordersvc.OrderDTO `json:"items"`
	Total int64               `json:"total"`
}

// MyOrders returns the authenticated customer's order history.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, offset, ok := pageParams(w, r, logg)
		if !ok {
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		items, total, err := svc.ListMine(r.Context(), userID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderPageResponse{Items: ordersvc.FromModels(items), Total: total})
	}
}

// GetOrder returns a single order, enforcing ownership for customers.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.Get(r.Context(), orderID, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ordersvc.FromModel(order))
	}
}

// CancelOrder lets a customer abandon an order that has not started preparation.
func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ordersvc.FromModel(order))
	}
}

// OrderWhatsAppLink builds the wa.me handoff link for an order.
func OrderWhatsAppLink(svc ordersvc.Service, relaySvc relay.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || relaySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "relay service unavailable"))
			return
		}

		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.Get(r.Context(), orderID, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := relaySvc.OrderLink(r.Context(), order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": link})
	}
}

func actorFromContext(r *http.Request) ordersvc.Actor {
	return ordersvc.Actor{
		UserID: middleware.UserUUIDFromContext(r.Context()),
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}
}

func orderIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
		return uuid.Nil, false
	}
	return orderID, true
}

func pageParams(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (limit, offset int, ok bool) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return 0, 0, false
	}
	offset, err = validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return 0, 0, false
	}
	return limit, offset, true
}
