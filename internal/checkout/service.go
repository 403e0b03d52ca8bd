package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/internal/cart"
	"github.com/fornodoro/backend/internal/coupons"
	"github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/internal/payments/pix"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
)

// Input is the checkout request after transport-level validation.
type Input struct {
	SessionID      string
	UserID         uuid.UUID
	Address        string
	PaymentMethod  enums.PaymentMethod
	ChangeFor      *string
	CouponCode     *string
	PointsToRedeem int
	Observations   *string
}

// Result is the created order plus the PIX charge when one applies.
type Result struct {
	Order      *models.Order
	PixPayload *string
	PixExpires *time.Time
}

// Service turns a session cart into a persisted order. The order itself is
// transactional; coupon and loyalty follow-ups tolerate partial failure so a
// paying customer never loses an order to a bookkeeping hiccup.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type cartSource interface {
	Snapshot(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type couponChecker interface {
	Validate(ctx context.Context, code string, orderTotal decimal.Decimal, userID *uuid.UUID) (*coupons.Validation, error)
	Use(ctx context.Context, tx *gorm.DB, code string, userID *uuid.UUID, orderID uuid.UUID) error
}

type loyaltyLedger interface {
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	MaxRedeemable(subtotal decimal.Decimal, balance int) int
	RedeemValue(points int) decimal.Decimal
	EarnFor(amount decimal.Decimal) int
	RedeemPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, description string, orderID *uuid.UUID) error
}

type storeSource interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

type orderStore interface {
	WithTx(tx *gorm.DB) orders.Repository
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type chargeGenerator interface {
	Generate(orderID uuid.UUID, amount decimal.Decimal) (*pix.Charge, error)
}

type service struct {
	carts   cartSource
	coupons couponChecker
	loyalty loyaltyLedger
	store   storeSource
	orders  orderStore
	runner  txRunner
	emitter outboxPublisher
	pix     chargeGenerator
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the checkout orchestrator.
func NewService(
	carts cartSource,
	coupons couponChecker,
	loyalty loyaltyLedger,
	store storeSource,
	orders orderStore,
	runner txRunner,
	emitter outboxPublisher,
	pixGen chargeGenerator,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil || coupons == nil || loyalty == nil || store == nil ||
		orders == nil || runner == nil || emitter == nil || pixGen == nil {
		return nil, fmt.Errorf("checkout service: all collaborators required")
	}
	return &service{
		carts:   carts,
		coupons: coupons,
		loyalty: loyalty,
		store:   store,
		orders:  orders,
		runner:  runner,
		emitter: emitter,
		pix:     pixGen,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store is closed")
	}

	snapshot, err := s.carts.Snapshot(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := snapshot.Subtotal()
	if subtotal.LessThan(settings.MinOrderValue) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order total below store minimum of %s", settings.MinOrderValue.StringFixed(2)))
	}

	couponCode, couponDiscount, err := s.resolveCoupon(ctx, input, snapshot, subtotal)
	if err != nil {
		return nil, err
	}

	pointsToRedeem, pointsDiscount, err := s.resolvePoints(ctx, input, subtotal)
	if err != nil {
		return nil, err
	}

	discount := couponDiscount.Add(pointsDiscount)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	total := subtotal.Sub(discount).Add(settings.DeliveryFee).Round(2)

	if err := s.checkChange(input, total); err != nil {
		return nil, err
	}

	userID := input.UserID
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         &userID,
		Status:         enums.OrderStatusPending,
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryFee:    settings.DeliveryFee,
		Total:          total,
		Address:        strings.TrimSpace(input.Address),
		PaymentMethod:  input.PaymentMethod,
		CouponCode:     couponCode,
		PointsEarned:   s.loyalty.EarnFor(subtotal.Sub(discount)),
		PointsRedeemed: pointsToRedeem,
		Observations:   input.Observations,
	}
	for _, line := range snapshot.Lines {
		order.Items = append(order.Items, snapshotItem(order.ID, line))
	}
	if input.ChangeFor != nil {
		change, _ := decimal.NewFromString(*input.ChangeFor)
		order.ChangeFor = &change
	}

	var result Result
	if input.PaymentMethod.RequiresUpfrontConfirmation() {
		charge, err := s.pix.Generate(order.ID, total)
		if err != nil {
			return nil, err
		}
		order.Status = enums.OrderStatusPendingPayment
		order.PixPayload = &charge.Payload
		order.PixExpiresAt = &charge.ExpiresAt
		result.PixPayload = &charge.Payload
		result.PixExpires = &charge.ExpiresAt
	}

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}
	result.Order = order

	s.settle(ctx, order)

	// The cart is spent regardless of how the follow-ups went.
	if err := s.carts.Clear(ctx, input.SessionID); err != nil {
		logCtx := s.logg.WithField(ctx, "session_id", input.SessionID)
		s.logg.Warn(logCtx, "checkout: cart clear failed")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"status":   order.Status.String(),
		"total":    order.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "order placed")
	return &result, nil
}

func (s *service) validateInput(input Input) error {
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.PointsToRedeem < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points_to_redeem cannot be negative")
	}
	if input.ChangeFor != nil && input.PaymentMethod != enums.PaymentMethodCash {
		return pkgerrors.New(pkgerrors.CodeValidation, "change_for only applies to cash payments")
	}
	if input.PaymentMethod == enums.PaymentMethodCash && input.ChangeFor == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "change_for is required for cash payments")
	}
	return nil
}

func (s *service) resolveCoupon(ctx context.Context, input Input, snapshot *cart.Cart, subtotal decimal.Decimal) (*string, decimal.Decimal, error) {
	code := snapshot.CouponCode
	if input.CouponCode != nil && *input.CouponCode != "" {
		code = input.CouponCode
	}
	if code == nil || *code == "" {
		return nil, decimal.Zero, nil
	}

	userID := input.UserID
	validation, err := s.coupons.Validate(ctx, *code, subtotal, &userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	normalized := validation.Coupon.Code
	return &normalized, validation.Discount, nil
}

func (s *service) resolvePoints(ctx context.Context, input Input, subtotal decimal.Decimal) (int, decimal.Decimal, error) {
	if input.PointsToRedeem == 0 {
		return 0, decimal.Zero, nil
	}

	balance, err := s.loyalty.Balance(ctx, input.UserID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if input.PointsToRedeem > balance {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient loyalty points").
			WithDetails(map[string]int{"balance": balance, "requested": input.PointsToRedeem})
	}

	allowed := s.loyalty.MaxRedeemable(subtotal, balance)
	if allowed == 0 {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "no points available to redeem").
			WithDetails(map[string]int{"balance": balance})
	}
	// Requests above the order cap apply the cap; the order reports the
	// points actually redeemed.
	points := input.PointsToRedeem
	if points > allowed {
		points = allowed
	}
	return points, s.loyalty.RedeemValue(points), nil
}

func (s *service) checkChange(input Input, total decimal.Decimal) error {
	if input.PaymentMethod != enums.PaymentMethodCash || input.ChangeFor == nil {
		return nil
	}
	change, err := decimal.NewFromString(*input.ChangeFor)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "change_for must be a decimal")
	}
	if change.LessThan(total) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("change_for must cover the order total of %s", total.StringFixed(2)))
	}
	return nil
}

func (s *service) persist(ctx context.Context, order *models.Order) error {
	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: *order.UserID},
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				UserID:        *order.UserID,
				Status:        order.Status,
				PaymentMethod: order.PaymentMethod,
				Total:         order.Total.StringFixed(2),
				PixExpiresAt:  order.PixExpiresAt,
			},
			OccurredAt: s.now(),
		})
	})
}

// settle runs the coupon and loyalty follow-ups. Each runs in its own
// transaction: a failure here is logged and the order stands.
func (s *service) settle(ctx context.Context, order *models.Order) {
	userID := order.UserID

	if order.CouponCode != nil {
		err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
			return s.coupons.Use(ctx, tx, *order.CouponCode, userID, order.ID)
		})
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"coupon":   *order.CouponCode,
			})
			s.logg.Error(logCtx, "checkout: coupon commit failed", err)
		}
	}

	if order.PointsRedeemed > 0 && userID != nil {
		err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
			return s.loyalty.RedeemPoints(ctx, tx, *userID, order.PointsRedeemed,
				"points redeemed at checkout", &order.ID)
		})
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"points":   order.PointsRedeemed,
			})
			s.logg.Error(logCtx, "checkout: points redemption failed", err)
		}
	}

	// Upfront-payment orders earn nothing until the payment lands; the grant
	// happens on the transition to confirmed.
	if order.PointsEarned > 0 && userID != nil && order.Status != enums.OrderStatusPendingPayment {
		err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
			return s.loyalty.AddPoints(ctx, tx, *userID, order.PointsEarned,
				"points earned on order", &order.ID)
		})
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"points":   order.PointsEarned,
			})
			s.logg.Error(logCtx, "checkout: points award failed", err)
		}
	}
}

func snapshotItem(orderID uuid.UUID, line cart.Line) models.OrderItem {
	return models.OrderItem{
		OrderID:      orderID,
		Type:         line.Type,
		Name:         line.Name,
		Size:         line.Size,
		Flavors:      line.Flavors,
		Crust:        line.Crust,
		Dough:        line.Dough,
		Extras:       line.Extras,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		Total:        line.Total(),
		Observations: line.Observations,
	}
}
