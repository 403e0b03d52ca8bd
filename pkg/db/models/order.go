package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// Order is the persisted checkout result. Items are denormalized snapshots so
// historical orders stay stable when the catalog changes later.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	Status         enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount       decimal.Decimal     `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	DeliveryFee    decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	Address        string              `gorm:"column:address;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	ChangeFor      *decimal.Decimal    `gorm:"column:change_for;type:numeric(10,2)"`
	CouponCode     *string             `gorm:"column:coupon_code"`
	PointsEarned   int                 `gorm:"column:points_earned;not null;default:0"`
	PointsRedeemed int                 `gorm:"column:points_redeemed;not null;default:0"`
	Observations   *string             `gorm:"column:observations"`
	PixPayload     *string             `gorm:"column:pix_payload"`
	PixExpiresAt   *time.Time          `gorm:"column:pix_expires_at"`
	ConfirmedAt    *time.Time          `gorm:"column:confirmed_at"`
	DeliveredAt    *time.Time          `gorm:"column:delivered_at"`
	CancelledAt    *time.Time          `gorm:"column:cancelled_at"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
