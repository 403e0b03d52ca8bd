package loyalty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

type fakeLedger struct {
	users   map[uuid.UUID]*models.User
	entries []models.LoyaltyTransaction
}

func newFakeLedger(users ...*models.User) *fakeLedger {
	ledger := &fakeLedger{users: map[uuid.UUID]*models.User{}}
	for _, user := range users {
		ledger.users[user.ID] = user
	}
	return ledger
}

func (f *fakeLedger) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeLedger) FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedger) Apply(ctx context.Context, user *models.User, entry *models.LoyaltyTransaction) error {
	f.entries = append(f.entries, *entry)
	f.users[user.ID].LoyaltyPoints += entry.Points
	return nil
}

func (f *fakeLedger) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	if user, ok := f.users[userID]; ok {
		return user.LoyaltyPoints, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (f *fakeLedger) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LoyaltyTransaction, error) {
	var out []models.LoyaltyTransaction
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func defaultConfig() config.LoyaltyConfig {
	return config.LoyaltyConfig{EarnDivisor: 10, RedeemRate: 10, MaxRedeemPercent: 50}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, defaultConfig())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestEarnForFloorsFractions(t *testing.T) {
	svc := newTestService(t, newFakeLedger())

	cases := []struct {
		total string
		want  int
	}{
		{"83.00", 8},
		{"9.99", 0},
		{"10.00", 1},
		{"149.90", 14},
		{"0.00", 0},
	}
	for _, tc := range cases {
		total, _ := decimal.NewFromString(tc.total)
		if got := svc.EarnFor(total); got != tc.want {
			t.Fatalf("EarnFor(%s) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestRedeemValue(t *testing.T) {
	svc := newTestService(t, newFakeLedger())

	if got := svc.RedeemValue(30); got.StringFixed(2) != "3.00" {
		t.Fatalf("RedeemValue(30) = %s, want 3.00", got.StringFixed(2))
	}
	if got := svc.RedeemValue(0); !got.IsZero() {
		t.Fatalf("RedeemValue(0) = %s, want 0", got)
	}
}

func TestMaxRedeemableCapsAtHalfSubtotal(t *testing.T) {
	svc := newTestService(t, newFakeLedger())

	// 50% of 37.00 is 18.50, worth 185 points, rounded down to 180.
	subtotal := decimal.NewFromFloat(37.00)
	if got := svc.MaxRedeemable(subtotal, 500); got != 180 {
		t.Fatalf("MaxRedeemable = %d, want 180", got)
	}
	// Balance below the cap wins, still rounded to a redemption multiple.
	if got := svc.MaxRedeemable(subtotal, 47); got != 40 {
		t.Fatalf("MaxRedeemable with low balance = %d, want 40", got)
	}
	if got := svc.MaxRedeemable(subtotal, 0); got != 0 {
		t.Fatalf("MaxRedeemable with empty balance = %d, want 0", got)
	}
}

func TestAddPointsWritesLedgerAndBalance(t *testing.T) {
	user := &models.User{ID: uuid.New(), LoyaltyPoints: 5}
	ledger := newFakeLedger(user)
	svc := newTestService(t, ledger)

	if err := svc.AddPoints(context.Background(), nil, user.ID, 8, "order delivered", nil); err != nil {
		t.Fatalf("AddPoints error: %v", err)
	}
	if ledger.users[user.ID].LoyaltyPoints != 13 {
		t.Fatalf("expected balance 13, got %d", ledger.users[user.ID].LoyaltyPoints)
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Points != 8 {
		t.Fatalf("expected a single +8 ledger entry, got %+v", ledger.entries)
	}
}

func TestRedeemPointsOverdraw(t *testing.T) {
	user := &models.User{ID: uuid.New(), LoyaltyPoints: 30}
	ledger := newFakeLedger(user)
	svc := newTestService(t, ledger)

	err := svc.RedeemPoints(context.Background(), nil, user.ID, 40, "checkout", nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientFunds {
		t.Fatalf("expected insufficient points error, got %v", err)
	}
	if ledger.users[user.ID].LoyaltyPoints != 30 {
		t.Fatalf("balance must be unchanged after a rejected redeem, got %d", ledger.users[user.ID].LoyaltyPoints)
	}
	if len(ledger.entries) != 0 {
		t.Fatalf("no ledger entry expected after a rejected redeem")
	}
}

func TestRedeemPointsRequiresRateMultiple(t *testing.T) {
	user := &models.User{ID: uuid.New(), LoyaltyPoints: 100}
	svc := newTestService(t, newFakeLedger(user))

	err := svc.RedeemPoints(context.Background(), nil, user.ID, 25, "checkout", nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRedeemPointsWritesNegativeEntry(t *testing.T) {
	user := &models.User{ID: uuid.New(), LoyaltyPoints: 50}
	ledger := newFakeLedger(user)
	svc := newTestService(t, ledger)

	orderID := uuid.New()
	if err := svc.RedeemPoints(context.Background(), nil, user.ID, 30, "checkout", &orderID); err != nil {
		t.Fatalf("RedeemPoints error: %v", err)
	}
	if ledger.users[user.ID].LoyaltyPoints != 20 {
		t.Fatalf("expected balance 20, got %d", ledger.users[user.ID].LoyaltyPoints)
	}
	if ledger.entries[0].Points != -30 {
		t.Fatalf("expected -30 ledger entry, got %d", ledger.entries[0].Points)
	}
}
