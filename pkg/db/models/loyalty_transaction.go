package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/enums"
)

// LoyaltyTransaction is an immutable ledger entry. Points is signed: positive
// for earns, negative for redemptions.
type LoyaltyTransaction struct {
	ID          uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                    `gorm:"column:user_id;type:uuid;not null;index"`
	Points      int                          `gorm:"column:points;not null"`
	Type        enums.LoyaltyTransactionType `gorm:"column:type;type:loyalty_transaction_type;not null"`
	Description string                       `gorm:"column:description;not null"`
	OrderID     *uuid.UUID                   `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time                    `gorm:"column:created_at;autoCreateTime"`
}
