package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service owns the loyalty ledger. Balances only move through AddPoints and
// RedeemPoints so the ledger and the materialized user balance never diverge.
type Service interface {
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
	RedeemPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LoyaltyTransaction, error)

	EarnFor(amount decimal.Decimal) int
	RedeemValue(points int) decimal.Decimal
	MaxRedeemable(subtotal decimal.Decimal, balance int) int
}

type service struct {
	repo Repository
	cfg  config.LoyaltyConfig
}

// NewService wires a loyalty service with the provided repository.
func NewService(repo Repository, cfg config.LoyaltyConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if cfg.EarnDivisor <= 0 || cfg.RedeemRate <= 0 {
		return nil, fmt.Errorf("loyalty config: earn divisor and redeem rate must be positive")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

// EarnFor returns the points awarded for a qualifying amount, the goods value
// after discounts and before delivery fee: one point per whole earn-divisor
// unit, fractions discarded.
func (s *service) EarnFor(amount decimal.Decimal) int {
	if !amount.IsPositive() {
		return 0
	}
	return int(amount.Div(decimal.NewFromInt(int64(s.cfg.EarnDivisor))).IntPart())
}

// RedeemValue converts points to currency at the configured rate.
func (s *service) RedeemValue(points int) decimal.Decimal {
	if points <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(points)).
		Div(decimal.NewFromInt(int64(s.cfg.RedeemRate))).
		Round(2)
}

// MaxRedeemable caps a redemption at the configured share of the subtotal,
// rounded down to a whole multiple of the redeem rate, and never above the
// user's balance.
func (s *service) MaxRedeemable(subtotal decimal.Decimal, balance int) int {
	if balance <= 0 || !subtotal.IsPositive() {
		return 0
	}
	capValue := subtotal.
		Mul(decimal.NewFromInt(int64(s.cfg.MaxRedeemPercent))).
		Div(decimal.NewFromInt(100))
	capPoints := int(capValue.Mul(decimal.NewFromInt(int64(s.cfg.RedeemRate))).IntPart())
	if balance < capPoints {
		capPoints = balance
	}
	return capPoints - capPoints%s.cfg.RedeemRate
}

func (s *service) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error {
	if points <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points to add must be positive")
	}
	return s.apply(ctx, tx, userID, points, enums.LoyaltyTransactionTypeEarn, description, orderID)
}

func (s *service) RedeemPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error {
	if points <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points to redeem must be positive")
	}
	if points%s.cfg.RedeemRate != 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("points to redeem must be a multiple of %d", s.cfg.RedeemRate))
	}
	return s.apply(ctx, tx, userID, -points, enums.LoyaltyTransactionTypeRedeem, description, orderID)
}

// apply holds the user row lock across the balance check, the ledger insert
// and the balance update.
func (s *service) apply(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int, txType enums.LoyaltyTransactionType, description string, orderID *uuid.UUID) error {
	repo := s.repo.WithTx(tx)

	user, err := repo.FindUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock user for loyalty")
	}

	if user.LoyaltyPoints+delta < 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "not enough loyalty points").
			WithDetails(map[string]int{"balance": user.LoyaltyPoints, "requested": -delta})
	}

	entry := &models.LoyaltyTransaction{
		UserID:      userID,
		Points:      delta,
		Type:        txType,
		Description: description,
		OrderID:     orderID,
	}
	if err := repo.Apply(ctx, user, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply loyalty transaction")
	}
	return nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load loyalty balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LoyaltyTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list loyalty transactions")
	}
	return entries, nil
}
