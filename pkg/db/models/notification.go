package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users. The
// (user_id, order_id, status) tuple is unique so duplicate deliveries from the
// event feed collapse into a single row.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:ux_notifications_user_order_status"`
	OrderID   uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:ux_notifications_user_order_status"`
	Status    enums.OrderStatus      `gorm:"type:order_status;not null;uniqueIndex:ux_notifications_user_order_status"`
	Type      enums.NotificationType `gorm:"type:notification_type;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Message   string                 `gorm:"type:text;not null"`
	ReadAt    *time.Time             `gorm:"type:timestamptz"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}
