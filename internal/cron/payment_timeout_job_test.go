package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
)

type fakeRunner struct{}

func (fakeRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeExpiredReader struct {
	orders []models.Order
}

func (f *fakeExpiredReader) FindExpiredPendingPayment(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return f.orders, nil
}

type fakeTxRepo struct {
	orders  map[uuid.UUID]*models.Order
	updated []models.Order
}

func (f *fakeTxRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[id]; ok {
		clone := *order
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTxRepo) Update(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	f.updated = append(f.updated, *order)
	return nil
}

type fakeRefunder struct {
	refunds map[uuid.UUID]int
}

func (f *fakeRefunder) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error {
	if f.refunds == nil {
		f.refunds = map[uuid.UUID]int{}
	}
	f.refunds[userID] += points
	return nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type jobTestHelper struct {
	job     *paymentTimeoutJob
	txRepo  *fakeTxRepo
	loyalty *fakeRefunder
	outbox  *fakeOutbox
}

func newPaymentTimeoutJobTest(t *testing.T, stale ...models.Order) *jobTestHelper {
	t.Helper()
	txRepo := &fakeTxRepo{orders: map[uuid.UUID]*models.Order{}}
	for i := range stale {
		order := stale[i]
		txRepo.orders[order.ID] = &order
	}
	loyalty := &fakeRefunder{}
	outboxSvc := &fakeOutbox{}
	job, err := NewPaymentTimeoutJob(PaymentTimeoutJobParams{
		Logger:        logger.New(logger.Options{Level: zerolog.Disabled}),
		DB:            fakeRunner{},
		ExpiredReader: &fakeExpiredReader{orders: stale},
		Loyalty:       loyalty,
		Outbox:        outboxSvc,
		TransactionalRepoFactory: func(tx *gorm.DB) transactionalOrderRepo {
			return txRepo
		},
	})
	if err != nil {
		t.Fatalf("NewPaymentTimeoutJob: %v", err)
	}
	return &jobTestHelper{
		job:     job.(*paymentTimeoutJob),
		txRepo:  txRepo,
		loyalty: loyalty,
		outbox:  outboxSvc,
	}
}

func expiredPixOrder(userID uuid.UUID) models.Order {
	uid := userID
	expired := time.Now().Add(-20 * time.Minute)
	return models.Order{
		ID:           uuid.New(),
		UserID:       &uid,
		Status:       enums.OrderStatusPendingPayment,
		PixExpiresAt: &expired,
	}
}

func TestPaymentTimeoutJob_cancelsStaleOrders(t *testing.T) {
	userID := uuid.New()
	order := expiredPixOrder(userID)
	order.PointsRedeemed = 30
	helper := newPaymentTimeoutJobTest(t, order)

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stored := helper.txRepo.orders[order.ID]
	if stored.Status != enums.OrderStatusCancelled || stored.CancelledAt == nil {
		t.Fatalf("expected cancelled order with timestamp, got %+v", stored)
	}
	if helper.loyalty.refunds[userID] != 30 {
		t.Fatalf("expected 30 points refunded, got %d", helper.loyalty.refunds[userID])
	}
	if len(helper.outbox.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(helper.outbox.events))
	}
	event := helper.outbox.events[0]
	if event.EventType != enums.EventOrderPaymentTimedOut {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.OrderPaymentTimedOutEvent)
	if !ok {
		t.Fatal("expected payment timed out payload")
	}
	if payload.OrderID != order.ID || payload.PointsRefunded != 30 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPaymentTimeoutJob_skipsOrdersPaidAfterScan(t *testing.T) {
	order := expiredPixOrder(uuid.New())
	helper := newPaymentTimeoutJobTest(t, order)
	// Simulate a payment landing between the scan and the lock.
	helper.txRepo.orders[order.ID].Status = enums.OrderStatusConfirmed

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(helper.txRepo.updated) != 0 {
		t.Fatalf("no update expected for a paid order")
	}
	if len(helper.outbox.events) != 0 {
		t.Fatalf("no event expected for a paid order")
	}
}

func TestPaymentTimeoutJob_noRefundWithoutRedeemedPoints(t *testing.T) {
	userID := uuid.New()
	helper := newPaymentTimeoutJobTest(t, expiredPixOrder(userID))

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if helper.loyalty.refunds[userID] != 0 {
		t.Fatalf("no refund expected, got %d", helper.loyalty.refunds[userID])
	}
}
