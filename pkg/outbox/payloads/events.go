package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/enums"
)

// OrderCreatedEvent signals a freshly placed order so downstream consumers
// can notify the customer and the kitchen feed.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Total         string              `json:"total"`
	PixExpiresAt  *time.Time          `json:"pix_expires_at,omitempty"`
}

// OrderStatusChangedEvent is emitted on every lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	UserID     uuid.UUID         `json:"user_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// OrderPaymentTimedOutEvent is emitted when the sweep cancels an order whose
// Pix charge was never confirmed inside the payment window.
type OrderPaymentTimedOutEvent struct {
	OrderID        uuid.UUID  `json:"order_id"`
	UserID         uuid.UUID  `json:"user_id"`
	ExpiredAt      time.Time  `json:"expired_at"`
	PointsRefunded int        `json:"points_refunded"`
	CouponCode     *string    `json:"coupon_code,omitempty"`
	PixExpiresAt   *time.Time `json:"pix_expires_at,omitempty"`
}
