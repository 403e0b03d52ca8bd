package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

type fakeRepo struct {
	coupons     map[string]*models.Coupon
	redemptions []models.CouponRedemption
	commitErr   error
}

func newFakeRepo(coupons ...*models.Coupon) *fakeRepo {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{}}
	for _, coupon := range coupons {
		repo.coupons[coupon.Code] = coupon
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := f.coupons[code]; ok {
		clone := *coupon
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	return f.FindByCode(ctx, code)
}

func (f *fakeRepo) HasUserRedemption(ctx context.Context, couponID, userID uuid.UUID) (bool, error) {
	for _, redemption := range f.redemptions {
		if redemption.CouponID == couponID && redemption.UserID != nil && *redemption.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CommitUse(ctx context.Context, coupon *models.Coupon, redemption *models.CouponRedemption) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.coupons[coupon.Code].CurrentUses++
	f.redemptions = append(f.redemptions, *redemption)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, includeInactive bool) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range f.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, coupon := range f.coupons {
		if coupon.ID == id {
			clone := *coupon
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	f.coupons[coupon.Code] = coupon
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	f.coupons[coupon.Code] = coupon
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for code, coupon := range f.coupons {
		if coupon.ID == id {
			delete(f.coupons, code)
		}
	}
	return nil
}

func validCoupon() *models.Coupon {
	return &models.Coupon{
		ID:            uuid.New(),
		Code:          "PIZZA10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(50),
		MaxUses:       100,
		CurrentUses:   0,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		IsActive:      true,
	}
}

func newTestService(t *testing.T, repo Repository, perUserSingleUse bool) Service {
	t.Helper()
	svc, err := NewService(repo, config.CouponConfig{PerUserSingleUse: perUserSingleUse})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func assertRejected(t *testing.T, err error) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeCouponRejected {
		t.Fatalf("expected coupon rejection, got %v", err)
	}
}

func TestValidatePercentageDiscount(t *testing.T) {
	svc := newTestService(t, newFakeRepo(validCoupon()), true)

	result, err := svc.Validate(context.Background(), "  pizza10 ", decimal.NewFromInt(80), nil)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got := result.Discount.StringFixed(2); got != "8.00" {
		t.Fatalf("expected discount 8.00, got %s", got)
	}
}

func TestValidateFixedDiscountCappedAtTotal(t *testing.T) {
	coupon := validCoupon()
	coupon.Code = "FLAT20"
	coupon.DiscountType = enums.DiscountTypeFixed
	coupon.DiscountValue = decimal.NewFromInt(20)
	coupon.MinOrderValue = decimal.Zero
	svc := newTestService(t, newFakeRepo(coupon), true)

	result, err := svc.Validate(context.Background(), "FLAT20", decimal.NewFromInt(15), nil)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got := result.Discount.StringFixed(2); got != "15.00" {
		t.Fatalf("fixed discount must not exceed order total, got %s", got)
	}
}

func TestValidateRejectsBelowMinimum(t *testing.T) {
	svc := newTestService(t, newFakeRepo(validCoupon()), true)

	_, err := svc.Validate(context.Background(), "PIZZA10", decimal.NewFromInt(30), nil)
	assertRejected(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	coupon := validCoupon()
	coupon.ValidUntil = time.Now().Add(-time.Minute)
	svc := newTestService(t, newFakeRepo(coupon), true)

	_, err := svc.Validate(context.Background(), "PIZZA10", decimal.NewFromInt(80), nil)
	assertRejected(t, err)
}

func TestValidateRejectsExhausted(t *testing.T) {
	coupon := validCoupon()
	coupon.CurrentUses = coupon.MaxUses
	svc := newTestService(t, newFakeRepo(coupon), true)

	_, err := svc.Validate(context.Background(), "PIZZA10", decimal.NewFromInt(80), nil)
	assertRejected(t, err)
}

func TestValidateRejectsSecondUseBySameUser(t *testing.T) {
	coupon := validCoupon()
	repo := newFakeRepo(coupon)
	svc := newTestService(t, repo, true)
	userID := uuid.New()

	if err := svc.Use(context.Background(), nil, "PIZZA10", &userID, uuid.New()); err != nil {
		t.Fatalf("Use error: %v", err)
	}

	_, err := svc.Validate(context.Background(), "PIZZA10", decimal.NewFromInt(80), &userID)
	assertRejected(t, err)
}

func TestPerUserSingleUseDisabled(t *testing.T) {
	coupon := validCoupon()
	repo := newFakeRepo(coupon)
	svc := newTestService(t, repo, false)
	userID := uuid.New()

	if err := svc.Use(context.Background(), nil, "PIZZA10", &userID, uuid.New()); err != nil {
		t.Fatalf("Use error: %v", err)
	}
	if _, err := svc.Validate(context.Background(), "PIZZA10", decimal.NewFromInt(80), &userID); err != nil {
		t.Fatalf("repeat use should be allowed when policy is off: %v", err)
	}
}

func TestUseIncrementsCounter(t *testing.T) {
	coupon := validCoupon()
	repo := newFakeRepo(coupon)
	svc := newTestService(t, repo, true)

	if err := svc.Use(context.Background(), nil, "PIZZA10", nil, uuid.New()); err != nil {
		t.Fatalf("Use error: %v", err)
	}
	if repo.coupons["PIZZA10"].CurrentUses != 1 {
		t.Fatalf("expected current_uses 1, got %d", repo.coupons["PIZZA10"].CurrentUses)
	}
	if len(repo.redemptions) != 1 {
		t.Fatalf("expected redemption row, got %d", len(repo.redemptions))
	}
}

func TestUseRejectsWhenExhaustedUnderLock(t *testing.T) {
	coupon := validCoupon()
	coupon.MaxUses = 1
	repo := newFakeRepo(coupon)
	svc := newTestService(t, repo, false)

	if err := svc.Use(context.Background(), nil, "PIZZA10", nil, uuid.New()); err != nil {
		t.Fatalf("first Use error: %v", err)
	}
	err := svc.Use(context.Background(), nil, "PIZZA10", nil, uuid.New())
	assertRejected(t, err)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), true)

	_, err := svc.Create(context.Background(), CouponInput{
		Code:          "BAD",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: "150",
		MaxUses:       10,
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(time.Hour),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
