package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
	paginationpkg "github.com/fornodoro/backend/pkg/pagination"
)

type fakeRepository struct {
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	unreadFn      func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.unreadFn != nil {
		return f.unreadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}
	next := &paginationpkg.Cursor{CreatedAt: time.Now(), ID: uuid.New()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if !params.UnreadOnly {
				t.Fatalf("expected unread-only filter to pass through")
			}
			return []models.Notification{first}, next, nil
		},
	}
	svc := newServiceWithRepo(repo)

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), UnreadOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != first.ID {
		t.Fatalf("unexpected items: %+v", result.Items)
	}
	if result.Cursor == "" {
		t.Fatalf("expected encoded cursor for the next page")
	}
}

func TestService_ListRequiresUser(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})

	_, err := svc.List(context.Background(), ListParams{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_MarkAllReadPropagatesErrors(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo)

	_, err := svc.MarkAllRead(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestBuildNotificationStatusChanged(t *testing.T) {
	consumer := &Consumer{}
	payload := payloads.OrderStatusChangedEvent{
		OrderID:    uuid.New(),
		UserID:     uuid.New(),
		FromStatus: enums.OrderStatusConfirmed,
		ToStatus:   enums.OrderStatusDelivering,
		ChangedAt:  time.Now(),
	}
	raw, _ := json.Marshal(payload)

	notification, err := consumer.buildNotification(enums.EventOrderStatusChanged, raw)
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if notification.UserID != payload.UserID || notification.OrderID != payload.OrderID {
		t.Fatalf("unexpected targeting: %+v", notification)
	}
	if notification.Status != enums.OrderStatusDelivering {
		t.Fatalf("expected delivering status, got %s", notification.Status)
	}
	if notification.Type != enums.NotificationOrderStatus {
		t.Fatalf("unexpected type: %s", notification.Type)
	}
}

func TestBuildNotificationPaymentTimedOut(t *testing.T) {
	consumer := &Consumer{}
	payload := payloads.OrderPaymentTimedOutEvent{
		OrderID:        uuid.New(),
		UserID:         uuid.New(),
		ExpiredAt:      time.Now(),
		PointsRefunded: 20,
	}
	raw, _ := json.Marshal(payload)

	notification, err := consumer.buildNotification(enums.EventOrderPaymentTimedOut, raw)
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if notification.Type != enums.NotificationPaymentTimeout {
		t.Fatalf("unexpected type: %s", notification.Type)
	}
	if notification.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", notification.Status)
	}
}

func TestBuildNotificationIgnoresUnknownEvents(t *testing.T) {
	consumer := &Consumer{}

	notification, err := consumer.buildNotification("something_else", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if notification != nil {
		t.Fatalf("unknown events must be skipped")
	}
}
