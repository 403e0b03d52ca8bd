package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// PizzaOption is a configurable variant or add-on for the pizza builder.
// Sizes carry a price multiplier and a max flavor count; crusts, doughs and
// extras carry a flat price. The zero-price "none"/"tradicional" defaults are
// regular rows so the builder never special-cases them.
type PizzaOption struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Kind       enums.PizzaOptionKind `gorm:"column:kind;type:pizza_option_kind;not null"`
	Name       string                `gorm:"column:name;not null"`
	Price      decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Multiplier decimal.Decimal       `gorm:"column:multiplier;type:numeric(4,2);not null;default:1"`
	MaxFlavors int                   `gorm:"column:max_flavors;not null;default:0"`
	IsDefault  bool                  `gorm:"column:is_default;not null;default:false"`
	IsActive   bool                  `gorm:"column:is_active;not null;default:true"`
	SortOrder  int                   `gorm:"column:sort_order;not null;default:0"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
