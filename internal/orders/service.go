package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
)

// Actor identifies who is driving an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service owns the order lifecycle after checkout: reads, status transitions
// and payment confirmation. Every transition is validated against the status
// machine and announced through the outbox.
type Service interface {
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	ListAll(ctx context.Context, status *enums.OrderStatus, limit, offset int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus, actor Actor) (*models.Order, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// pointsLedger grants points: refunds on cancellation, deferred earn when an
// upfront payment is confirmed.
type pointsLedger interface {
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
}

type service struct {
	repo    Repository
	runner  txRunner
	emitter outboxPublisher
	loyalty pointsLedger
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires an order service with its collaborators.
func NewService(repo Repository, runner txRunner, emitter outboxPublisher, loyalty pointsLedger, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if loyalty == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	return &service{
		repo:    repo,
		runner:  runner,
		emitter: emitter,
		loyalty: loyalty,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if !actor.isAdmin() && (order.UserID == nil || *order.UserID != actor.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	limit = clampLimit(limit)
	orders, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return orders, total, nil
}

func (s *service) ListAll(ctx context.Context, status *enums.OrderStatus, limit, offset int) ([]models.Order, int64, error) {
	limit = clampLimit(limit)
	if status != nil && !status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	orders, total, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return orders, total, nil
}

// UpdateStatus moves an order along the lifecycle. Only admins drive forward
// transitions; cancellations also come from customers via Cancel.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus, actor Actor) (*models.Order, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	return s.transition(ctx, id, next, actor)
}

// ConfirmPayment acknowledges an upfront payment and moves the order to
// confirmed.
func (s *service) ConfirmPayment(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return s.transition(ctx, id, enums.OrderStatusConfirmed, actor)
}

// Cancel lets the owner abandon an order that has not been confirmed yet;
// admins can cancel any non-terminal order.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	if !actor.isAdmin() {
		order, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if order.UserID == nil || *order.UserID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPendingPayment {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]string{"status": order.Status.String()})
		}
	}
	return s.transition(ctx, id, enums.OrderStatusCancelled, actor)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, next enums.OrderStatus, actor Actor) (*models.Order, error) {
	var updated *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock order")
		}

		from := order.Status
		if from == next {
			updated = order
			return nil
		}
		if !from.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", from, next)).
				WithDetails(map[string]string{"from": from.String(), "to": next.String()})
		}

		now := s.now()
		order.Status = next
		switch next {
		case enums.OrderStatusConfirmed:
			order.ConfirmedAt = &now
		case enums.OrderStatusDelivered:
			order.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			order.CancelledAt = &now
		}

		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}

		// Redeemed points go back when the order dies before fulfilment.
		if next == enums.OrderStatusCancelled && order.PointsRedeemed > 0 && order.UserID != nil {
			if err := s.loyalty.AddPoints(ctx, tx, *order.UserID, order.PointsRedeemed,
				"points refunded for cancelled order", &order.ID); err != nil {
				return err
			}
		}

		// Upfront-payment orders hold their earn until the payment lands.
		if from == enums.OrderStatusPendingPayment && next == enums.OrderStatusConfirmed &&
			order.PointsEarned > 0 && order.UserID != nil {
			if err := s.loyalty.AddPoints(ctx, tx, *order.UserID, order.PointsEarned,
				"points earned on order", &order.ID); err != nil {
				return err
			}
		}

		if err := s.emitStatusChanged(ctx, tx, order, from, next, actor, now); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": id.String(),
			"status":   updated.Status.String(),
		})
		s.logg.Info(logCtx, "order status updated")
	}
	return updated, nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus, actor Actor, at time.Time) error {
	var userID uuid.UUID
	if order.UserID != nil {
		userID = *order.UserID
	}
	return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
		Data: payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			UserID:     userID,
			FromStatus: from,
			ToStatus:   to,
			ChangedAt:  at,
		},
		OccurredAt: at,
	})
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
