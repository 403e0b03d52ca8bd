package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// Product is a simple catalog item sold as-is (beverages, desserts, sides).
type Product struct {
	ID        uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string                `gorm:"column:name;not null"`
	Category  enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Price     decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL  *string               `gorm:"column:image_url"`
	IsActive  bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
