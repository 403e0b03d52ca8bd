package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// Coupon is a promotional code. CurrentUses is only incremented by the
// use-coupon commit, which runs under a row lock so concurrent checkouts
// cannot race past MaxUses.
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;type:text;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinOrderValue decimal.Decimal    `gorm:"column:min_order_value;type:numeric(10,2);not null;default:0"`
	MaxUses       int                `gorm:"column:max_uses;not null"`
	CurrentUses   int                `gorm:"column:current_uses;not null;default:0"`
	ValidFrom     time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil    time.Time          `gorm:"column:valid_until;not null"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponRedemption records a committed coupon use, keyed so the per-user
// single-use policy can be enforced with a unique index.
type CouponRedemption struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID  uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
