package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/enums"
)

// User represents the canonical identity entity. LoyaltyPoints is the
// materialized balance of the loyalty ledger; it is only mutated together with
// a loyalty_transactions insert inside the same transaction.
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	Name          string         `gorm:"column:name;not null"`
	Phone         *string        `gorm:"column:phone"`
	Role          enums.UserRole `gorm:"column:role;type:user_role;not null;default:'customer'"`
	LoyaltyPoints int            `gorm:"column:loyalty_points;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
