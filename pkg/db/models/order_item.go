package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// OrderItem captures the snapshot of each cart line within an order. Pizza
// rows carry the configuration (size, flavors, crust, dough, extras); product
// rows only the name.
type OrderItem struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Type         enums.OrderItemType `gorm:"column:type;type:order_item_type;not null"`
	Name         string              `gorm:"column:name;not null"`
	Size         *string             `gorm:"column:size"`
	Flavors      []string            `gorm:"column:flavors;type:jsonb;serializer:json"`
	Crust        *string             `gorm:"column:crust"`
	Dough        *string             `gorm:"column:dough"`
	Extras       []string            `gorm:"column:extras;type:jsonb;serializer:json"`
	Quantity     int                 `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal     `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Total        decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	Observations *string             `gorm:"column:observations"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}
