package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/db/models"
)

// PizzaDTO represents a menu flavor returned to clients.
type PizzaDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BasePrice   string    `json:"base_price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductDTO represents a simple catalog item returned to clients.
type ProductDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     string    `json:"price"`
	ImageURL  *string   `json:"image_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PizzaOptionDTO represents a builder option returned to clients.
type PizzaOptionDTO struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Multiplier string    `json:"multiplier,omitempty"`
	MaxFlavors int       `json:"max_flavors,omitempty"`
	IsDefault  bool      `json:"is_default"`
	IsActive   bool      `json:"is_active"`
	SortOrder  int       `json:"sort_order"`
}

// BuilderOptionsDTO groups builder options by kind for the wizard steps.
type BuilderOptionsDTO struct {
	Sizes  []PizzaOptionDTO `json:"sizes"`
	Crusts []PizzaOptionDTO `json:"crusts"`
	Doughs []PizzaOptionDTO `json:"doughs"`
	Extras []PizzaOptionDTO `json:"extras"`
}

// MenuDTO is the storefront landing payload.
type MenuDTO struct {
	Pizzas   []PizzaDTO   `json:"pizzas"`
	Products []ProductDTO `json:"products"`
}

func toPizzaDTO(pizza models.Pizza) PizzaDTO {
	return PizzaDTO{
		ID:          pizza.ID,
		Name:        pizza.Name,
		Description: pizza.Description,
		BasePrice:   pizza.BasePrice.StringFixed(2),
		ImageURL:    pizza.ImageURL,
		IsActive:    pizza.IsActive,
		CreatedAt:   pizza.CreatedAt,
		UpdatedAt:   pizza.UpdatedAt,
	}
}

func toProductDTO(product models.Product) ProductDTO {
	return ProductDTO{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category.String(),
		Price:     product.Price.StringFixed(2),
		ImageURL:  product.ImageURL,
		IsActive:  product.IsActive,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

func toPizzaOptionDTO(option models.PizzaOption) PizzaOptionDTO {
	return PizzaOptionDTO{
		ID:         option.ID,
		Kind:       option.Kind.String(),
		Name:       option.Name,
		Price:      option.Price.StringFixed(2),
		Multiplier: option.Multiplier.String(),
		MaxFlavors: option.MaxFlavors,
		IsDefault:  option.IsDefault,
		IsActive:   option.IsActive,
		SortOrder:  option.SortOrder,
	}
}
