package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service exposes the two-phase coupon flow: Validate is cheap and repeatable,
// Use commits the shared counter exactly once per successful order.
type Service interface {
	Validate(ctx context.Context, code string, orderTotal decimal.Decimal, userID *uuid.UUID) (*Validation, error)
	Use(ctx context.Context, tx *gorm.DB, code string, userID *uuid.UUID, orderID uuid.UUID) error

	List(ctx context.Context, includeInactive bool) ([]models.Coupon, error)
	Create(ctx context.Context, input CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input CouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Validation is the outcome of a successful coupon check.
type Validation struct {
	Coupon   *models.Coupon  `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
}

// CouponInput holds the validated payload to create or update a coupon.
type CouponInput struct {
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue string
	MinOrderValue string
	MaxUses       int
	ValidFrom     time.Time
	ValidUntil    time.Time
	IsActive      *bool
}

type service struct {
	repo Repository
	cfg  config.CouponConfig
	now  func() time.Time
}

// NewService wires a coupon service with the provided repository.
func NewService(repo Repository, cfg config.CouponConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, cfg: cfg, now: time.Now}, nil
}

// NormalizeCode uppercases and trims a raw coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *service) Validate(ctx context.Context, code string, orderTotal decimal.Decimal, userID *uuid.UUID) (*Validation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejected("coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}

	if err := s.check(ctx, coupon, orderTotal, userID); err != nil {
		return nil, err
	}

	return &Validation{
		Coupon:   coupon,
		Discount: computeDiscount(coupon, orderTotal),
	}, nil
}

// Use re-validates under a row lock and commits the usage. It must run inside
// the caller's transaction when one is supplied so the counter increment and
// the redemption row land atomically with the rest of the work.
func (s *service) Use(ctx context.Context, tx *gorm.DB, code string, userID *uuid.UUID, orderID uuid.UUID) error {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	repo := s.repo.WithTx(tx)
	coupon, err := repo.FindByCodeForUpdate(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock coupon")
	}

	// The lock makes this re-check authoritative: a concurrent checkout that
	// won the race has already bumped current_uses by the time we see the row.
	if err := s.checkWithRepo(ctx, repo, coupon, decimal.Decimal{}, userID, true); err != nil {
		return err
	}

	redemption := &models.CouponRedemption{
		CouponID: coupon.ID,
		UserID:   userID,
		OrderID:  orderID,
	}
	if err := repo.CommitUse(ctx, coupon, redemption); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: commit coupon use")
	}
	return nil
}

func (s *service) check(ctx context.Context, coupon *models.Coupon, orderTotal decimal.Decimal, userID *uuid.UUID) error {
	return s.checkWithRepo(ctx, s.repo, coupon, orderTotal, userID, false)
}

func (s *service) checkWithRepo(ctx context.Context, repo Repository, coupon *models.Coupon, orderTotal decimal.Decimal, userID *uuid.UUID, skipTotal bool) error {
	now := s.now()
	if !coupon.IsActive {
		return rejected("coupon is inactive")
	}
	if now.Before(coupon.ValidFrom) {
		return rejected("coupon is not yet valid")
	}
	if now.After(coupon.ValidUntil) {
		return rejected("coupon has expired")
	}
	if !skipTotal && orderTotal.LessThan(coupon.MinOrderValue) {
		return rejected(fmt.Sprintf("order total below minimum of %s", coupon.MinOrderValue.StringFixed(2)))
	}
	if coupon.CurrentUses >= coupon.MaxUses {
		return rejected("coupon usage limit reached")
	}
	if s.cfg.PerUserSingleUse && userID != nil {
		used, err := repo.HasUserRedemption(ctx, coupon.ID, *userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check coupon redemptions")
		}
		if used {
			return rejected("coupon already used by this account")
		}
	}
	return nil
}

func computeDiscount(coupon *models.Coupon, orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = orderTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}
	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}
	return discount.Round(2)
}

func rejected(reason string) error {
	return pkgerrors.New(pkgerrors.CodeCouponRejected, "coupon rejected").WithDetails(map[string]string{"reason": reason})
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list coupons")
	}
	return coupons, nil
}

func (s *service) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	coupon, err := buildCoupon(&models.Coupon{IsActive: true}, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}
	updated, err := buildCoupon(coupon, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update coupon")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete coupon")
	}
	return nil
}

func buildCoupon(coupon *models.Coupon, input CouponInput) (*models.Coupon, error) {
	if code := NormalizeCode(input.Code); code != "" {
		coupon.Code = code
	}
	if coupon.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if input.DiscountType != "" {
		if !input.DiscountType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
		}
		coupon.DiscountType = input.DiscountType
	}
	if input.DiscountValue != "" {
		value, err := decimal.NewFromString(input.DiscountValue)
		if err != nil || !value.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be a positive decimal")
		}
		if coupon.DiscountType == enums.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
		}
		coupon.DiscountValue = value
	}
	if input.MinOrderValue != "" {
		value, err := decimal.NewFromString(input.MinOrderValue)
		if err != nil || value.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_value must be a non-negative decimal")
		}
		coupon.MinOrderValue = value
	}
	if input.MaxUses > 0 {
		coupon.MaxUses = input.MaxUses
	}
	if coupon.MaxUses <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_uses must be positive")
	}
	if !input.ValidFrom.IsZero() {
		coupon.ValidFrom = input.ValidFrom
	}
	if !input.ValidUntil.IsZero() {
		coupon.ValidUntil = input.ValidUntil
	}
	if coupon.ValidFrom.IsZero() || coupon.ValidUntil.IsZero() || !coupon.ValidUntil.After(coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be after valid_from")
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return coupon, nil
}
