package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettings is a single-row table holding storefront configuration the
// back-office can edit at runtime.
type StoreSettings struct {
	ID            int             `gorm:"column:id;primaryKey;default:1"`
	StoreName     string          `gorm:"column:store_name;not null"`
	DeliveryFee   decimal.Decimal `gorm:"column:delivery_fee;type:numeric(10,2);not null"`
	MinOrderValue decimal.Decimal `gorm:"column:min_order_value;type:numeric(10,2);not null;default:0"`
	IsOpen        bool            `gorm:"column:is_open;not null;default:true"`
	OpeningHours  *string         `gorm:"column:opening_hours"`
	WhatsAppPhone *string         `gorm:"column:whatsapp_phone"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
