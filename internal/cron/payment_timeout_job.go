package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
)

const expiredOrderBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type expiredOrderReader interface {
	FindExpiredPendingPayment(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type transactionalOrderRepo interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

type pointsRefunder interface {
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
}

type transactionalRepoFactory func(tx *gorm.DB) transactionalOrderRepo

func defaultTransactionalRepo(tx *gorm.DB) transactionalOrderRepo {
	return orders.NewRepository(tx)
}

// PaymentTimeoutJobParams configure the unpaid PIX order sweeper.
type PaymentTimeoutJobParams struct {
	Logger                   *logger.Logger
	DB                       txRunner
	ExpiredReader            expiredOrderReader
	Loyalty                  pointsRefunder
	Outbox                   outboxEmitter
	TransactionalRepoFactory transactionalRepoFactory
}

// NewPaymentTimeoutJob builds the cron job that cancels PIX orders whose
// payment window elapsed without confirmation.
func NewPaymentTimeoutJob(params PaymentTimeoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.ExpiredReader == nil {
		return nil, fmt.Errorf("expired orders reader required")
	}
	if params.Loyalty == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.TransactionalRepoFactory
	if repoFactory == nil {
		repoFactory = defaultTransactionalRepo
	}
	return &paymentTimeoutJob{
		logg:          params.Logger,
		db:            params.DB,
		expiredReader: params.ExpiredReader,
		loyalty:       params.Loyalty,
		outbox:        params.Outbox,
		repoFactory:   repoFactory,
		now:           time.Now,
	}, nil
}

type paymentTimeoutJob struct {
	logg          *logger.Logger
	db            txRunner
	expiredReader expiredOrderReader
	loyalty       pointsRefunder
	outbox        outboxEmitter
	repoFactory   transactionalRepoFactory
	now           func() time.Time
}

func (j *paymentTimeoutJob) Name() string { return "payment-timeout" }

func (j *paymentTimeoutJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	stale, err := j.expiredReader.FindExpiredPendingPayment(ctx, cutoff, expiredOrderBatchSize)
	if err != nil {
		return fmt.Errorf("query expired pending-payment orders: %w", err)
	}
	count := 0
	var errs []error
	for _, order := range stale {
		if err := j.expireOrder(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "failed": len(errs)})
	j.logg.Info(logCtx, "payment timeout sweep complete")
	return multierr.Combine(errs...)
}

func (j *paymentTimeoutJob) expireOrder(ctx context.Context, order models.Order) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		// A payment may have landed between the scan and the lock.
		if current.Status != enums.OrderStatusPendingPayment {
			return nil
		}

		now := j.now().UTC()
		current.Status = enums.OrderStatusCancelled
		current.CancelledAt = &now
		if err := repo.Update(ctx, current); err != nil {
			return err
		}

		if current.PointsRedeemed > 0 && current.UserID != nil {
			if err := j.loyalty.AddPoints(ctx, tx, *current.UserID, current.PointsRedeemed,
				"points refunded for expired payment", &current.ID); err != nil {
				return err
			}
		}

		var userID uuid.UUID
		if current.UserID != nil {
			userID = *current.UserID
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentTimedOut,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OrderPaymentTimedOutEvent{
				OrderID:        current.ID,
				UserID:         userID,
				ExpiredAt:      now,
				PointsRefunded: current.PointsRedeemed,
				CouponCode:     current.CouponCode,
				PixExpiresAt:   current.PixExpiresAt,
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
