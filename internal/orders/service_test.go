package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
)

type fakeRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newFakeRepo(orders ...*models.Order) *fakeRepo {
	repo := &fakeRepo{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[id]; ok {
		clone := *order
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) List(ctx context.Context, status *enums.OrderStatus, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range f.orders {
		if status == nil || order.Status == *status {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindExpiredPendingPayment(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

type fakeRunner struct{}

func (fakeRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeLoyalty struct {
	grants map[uuid.UUID]int
}

func (f *fakeLoyalty) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error {
	if f.grants == nil {
		f.grants = map[uuid.UUID]int{}
	}
	f.grants[userID] += points
	return nil
}

func newTestService(t *testing.T, repo Repository, emitter *fakeEmitter, loyalty *fakeLoyalty) Service {
	t.Helper()
	svc, err := NewService(repo, fakeRunner{}, emitter, loyalty, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func pendingOrder(userID uuid.UUID) *models.Order {
	uid := userID
	return &models.Order{
		ID:     uuid.New(),
		UserID: &uid,
		Status: enums.OrderStatusPending,
	}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	order := pendingOrder(uuid.New())
	repo := newFakeRepo(order)
	emitter := &fakeEmitter{}
	svc := newTestService(t, repo, emitter, &fakeLoyalty{})

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed, adminActor())
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if updated.ConfirmedAt == nil {
		t.Fatalf("expected confirmed_at timestamp")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected a status-changed event, got %+v", emitter.events)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	order := pendingOrder(uuid.New())
	order.Status = enums.OrderStatusDelivered
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, &fakeLoyalty{})

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPreparing, adminActor())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, &fakeLoyalty{})

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed,
		Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSameStatusIsNoOp(t *testing.T) {
	order := pendingOrder(uuid.New())
	emitter := &fakeEmitter{}
	svc := newTestService(t, newFakeRepo(order), emitter, &fakeLoyalty{})

	if _, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending, adminActor()); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no event expected for an unchanged status")
	}
}

func TestCustomerCancelRefundsPoints(t *testing.T) {
	userID := uuid.New()
	order := pendingOrder(userID)
	order.Status = enums.OrderStatusPendingPayment
	order.PointsRedeemed = 30
	loyalty := &fakeLoyalty{}
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, loyalty)

	updated, err := svc.Cancel(context.Background(), order.ID,
		Actor{UserID: userID, Role: enums.UserRoleCustomer})
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if updated.Status != enums.OrderStatusCancelled || updated.CancelledAt == nil {
		t.Fatalf("expected cancelled order with timestamp, got %+v", updated)
	}
	if loyalty.grants[userID] != 30 {
		t.Fatalf("expected 30 points refunded, got %d", loyalty.grants[userID])
	}
}

func TestConfirmPaymentGrantsDeferredEarn(t *testing.T) {
	userID := uuid.New()
	order := pendingOrder(userID)
	order.Status = enums.OrderStatusPendingPayment
	order.PointsEarned = 10
	loyalty := &fakeLoyalty{}
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, loyalty)

	updated, err := svc.ConfirmPayment(context.Background(), order.ID, adminActor())
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if loyalty.grants[userID] != 10 {
		t.Fatalf("expected 10 points granted on payment, got %d", loyalty.grants[userID])
	}
}

func TestConfirmFromPendingGrantsNothing(t *testing.T) {
	// Cash and card orders earn at checkout; confirming them must not
	// grant a second time.
	userID := uuid.New()
	order := pendingOrder(userID)
	order.PointsEarned = 10
	loyalty := &fakeLoyalty{}
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, loyalty)

	if _, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed, adminActor()); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if loyalty.grants[userID] != 0 {
		t.Fatalf("expected no grant for a pending order, got %d", loyalty.grants[userID])
	}
}

func TestCustomerCannotCancelAfterConfirmation(t *testing.T) {
	userID := uuid.New()
	order := pendingOrder(userID)
	order.Status = enums.OrderStatusPreparing
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, &fakeLoyalty{})

	_, err := svc.Cancel(context.Background(), order.ID,
		Actor{UserID: userID, Role: enums.UserRoleCustomer})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	order := pendingOrder(uuid.New())
	svc := newTestService(t, newFakeRepo(order), &fakeEmitter{}, &fakeLoyalty{})

	_, err := svc.Get(context.Background(), order.ID,
		Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), order.ID, adminActor()); err != nil {
		t.Fatalf("admin read error: %v", err)
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.Disabled})
}
