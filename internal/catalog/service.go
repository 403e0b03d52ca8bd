package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service exposes catalog reads for the storefront and CRUD for the back-office.
type Service interface {
	Menu(ctx context.Context) (*MenuDTO, error)
	ListPizzas(ctx context.Context, includeInactive bool) ([]PizzaDTO, error)
	GetPizza(ctx context.Context, id uuid.UUID) (*PizzaDTO, error)
	ListProducts(ctx context.Context, category *enums.ProductCategory, includeInactive bool) ([]ProductDTO, error)
	ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]PizzaOptionDTO, error)
	BuilderOptions(ctx context.Context) (*BuilderOptionsDTO, error)

	CreatePizza(ctx context.Context, input PizzaInput) (*PizzaDTO, error)
	UpdatePizza(ctx context.Context, id uuid.UUID, input PizzaInput) (*PizzaDTO, error)
	DeletePizza(ctx context.Context, id uuid.UUID) error
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateOption(ctx context.Context, input OptionInput) (*PizzaOptionDTO, error)
	UpdateOption(ctx context.Context, id uuid.UUID, input OptionInput) (*PizzaOptionDTO, error)
	DeleteOption(ctx context.Context, id uuid.UUID) error
}

// PizzaInput holds the validated payload to create or update a flavor.
type PizzaInput struct {
	Name        string
	Description *string
	BasePrice   string
	ImageURL    *string
	IsActive    *bool
}

// ProductInput holds the validated payload to create or update a product.
type ProductInput struct {
	Name     string
	Category enums.ProductCategory
	Price    string
	ImageURL *string
	IsActive *bool
}

// OptionInput holds the validated payload to create or update a builder option.
type OptionInput struct {
	Kind       enums.PizzaOptionKind
	Name       string
	Price      string
	Multiplier string
	MaxFlavors int
	IsDefault  bool
	IsActive   *bool
	SortOrder  int
}

type catalogReader interface {
	ListPizzas(ctx context.Context, includeInactive bool) ([]models.Pizza, error)
	FindPizzaByID(ctx context.Context, id uuid.UUID) (*models.Pizza, error)
	CreatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error)
	UpdatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error)
	DeletePizza(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, category *enums.ProductCategory, includeInactive bool) ([]models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]models.PizzaOption, error)
	FindOptionByID(ctx context.Context, id uuid.UUID) (*models.PizzaOption, error)
	CreateOption(ctx context.Context, option *models.PizzaOption) (*models.PizzaOption, error)
	UpdateOption(ctx context.Context, option *models.PizzaOption) (*models.PizzaOption, error)
	DeleteOption(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo catalogReader
}

// NewService wires a catalog service with the provided repository.
func NewService(repo catalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Menu(ctx context.Context) (*MenuDTO, error) {
	pizzas, err := s.repo.ListPizzas(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pizzas")
	}
	products, err := s.repo.ListProducts(ctx, nil, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	menu := &MenuDTO{
		Pizzas:   make([]PizzaDTO, 0, len(pizzas)),
		Products: make([]ProductDTO, 0, len(products)),
	}
	for _, pizza := range pizzas {
		menu.Pizzas = append(menu.Pizzas, toPizzaDTO(pizza))
	}
	for _, product := range products {
		menu.Products = append(menu.Products, toProductDTO(product))
	}
	return menu, nil
}

func (s *service) ListPizzas(ctx context.Context, includeInactive bool) ([]PizzaDTO, error) {
	pizzas, err := s.repo.ListPizzas(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pizzas")
	}
	dtos := make([]PizzaDTO, 0, len(pizzas))
	for _, pizza := range pizzas {
		dtos = append(dtos, toPizzaDTO(pizza))
	}
	return dtos, nil
}

func (s *service) GetPizza(ctx context.Context, id uuid.UUID) (*PizzaDTO, error) {
	pizza, err := s.repo.FindPizzaByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pizza not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pizza")
	}
	dto := toPizzaDTO(*pizza)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, category *enums.ProductCategory, includeInactive bool) ([]ProductDTO, error) {
	if category != nil && !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	products, err := s.repo.ListProducts(ctx, category, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	dtos := make([]ProductDTO, 0, len(products))
	for _, product := range products {
		dtos = append(dtos, toProductDTO(product))
	}
	return dtos, nil
}

func (s *service) ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]PizzaOptionDTO, error) {
	if kind != nil && !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid option kind")
	}
	options, err := s.repo.ListOptions(ctx, kind, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list options")
	}
	dtos := make([]PizzaOptionDTO, 0, len(options))
	for _, option := range options {
		dtos = append(dtos, toPizzaOptionDTO(option))
	}
	return dtos, nil
}

func (s *service) BuilderOptions(ctx context.Context) (*BuilderOptionsDTO, error) {
	options, err := s.repo.ListOptions(ctx, nil, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list builder options")
	}

	grouped := &BuilderOptionsDTO{
		Sizes:  []PizzaOptionDTO{},
		Crusts: []PizzaOptionDTO{},
		Doughs: []PizzaOptionDTO{},
		Extras: []PizzaOptionDTO{},
	}
	for _, option := range options {
		dto := toPizzaOptionDTO(option)
		switch option.Kind {
		case enums.PizzaOptionSize:
			grouped.Sizes = append(grouped.Sizes, dto)
		case enums.PizzaOptionCrust:
			grouped.Crusts = append(grouped.Crusts, dto)
		case enums.PizzaOptionDough:
			grouped.Doughs = append(grouped.Doughs, dto)
		case enums.PizzaOptionExtra:
			grouped.Extras = append(grouped.Extras, dto)
		}
	}
	return grouped, nil
}

func (s *service) CreatePizza(ctx context.Context, input PizzaInput) (*PizzaDTO, error) {
	price, err := parsePrice(input.BasePrice, "base_price")
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	pizza := &models.Pizza{
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   price,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if input.IsActive != nil {
		pizza.IsActive = *input.IsActive
	}
	if _, err := s.repo.CreatePizza(ctx, pizza); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert pizza")
	}
	dto := toPizzaDTO(*pizza)
	return &dto, nil
}

func (s *service) UpdatePizza(ctx context.Context, id uuid.UUID, input PizzaInput) (*PizzaDTO, error) {
	pizza, err := s.repo.FindPizzaByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pizza not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pizza")
	}

	if input.Name != "" {
		pizza.Name = input.Name
	}
	if input.Description != nil {
		pizza.Description = input.Description
	}
	if input.BasePrice != "" {
		price, err := parsePrice(input.BasePrice, "base_price")
		if err != nil {
			return nil, err
		}
		pizza.BasePrice = price
	}
	if input.ImageURL != nil {
		pizza.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		pizza.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdatePizza(ctx, pizza); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update pizza")
	}
	dto := toPizzaDTO(*pizza)
	return &dto, nil
}

func (s *service) DeletePizza(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindPizzaByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pizza not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pizza")
	}
	if err := s.repo.DeletePizza(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete pizza")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	price, err := parsePrice(input.Price, "price")
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     input.Name,
		Category: input.Category,
		Price:    price,
		ImageURL: input.ImageURL,
		IsActive: true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Category != "" {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
		}
		product.Category = input.Category
	}
	if input.Price != "" {
		price, err := parsePrice(input.Price, "price")
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

func (s *service) CreateOption(ctx context.Context, input OptionInput) (*PizzaOptionDTO, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid option kind")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	price := decimal.Zero
	if input.Price != "" {
		parsed, err := parsePrice(input.Price, "price")
		if err != nil {
			return nil, err
		}
		price = parsed
	}
	multiplier := decimal.NewFromInt(1)
	if input.Multiplier != "" {
		parsed, err := decimal.NewFromString(input.Multiplier)
		if err != nil || parsed.IsNegative() || parsed.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "multiplier must be a positive decimal")
		}
		multiplier = parsed
	}
	if input.Kind == enums.PizzaOptionSize && input.MaxFlavors < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size options require max_flavors >= 1")
	}

	option := &models.PizzaOption{
		Kind:       input.Kind,
		Name:       input.Name,
		Price:      price,
		Multiplier: multiplier,
		MaxFlavors: input.MaxFlavors,
		IsDefault:  input.IsDefault,
		IsActive:   true,
		SortOrder:  input.SortOrder,
	}
	if input.IsActive != nil {
		option.IsActive = *input.IsActive
	}
	if _, err := s.repo.CreateOption(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert builder option")
	}
	dto := toPizzaOptionDTO(*option)
	return &dto, nil
}

func (s *service) UpdateOption(ctx context.Context, id uuid.UUID, input OptionInput) (*PizzaOptionDTO, error) {
	option, err := s.repo.FindOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "builder option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load builder option")
	}

	if input.Name != "" {
		option.Name = input.Name
	}
	if input.Price != "" {
		price, err := parsePrice(input.Price, "price")
		if err != nil {
			return nil, err
		}
		option.Price = price
	}
	if input.Multiplier != "" {
		multiplier, err := decimal.NewFromString(input.Multiplier)
		if err != nil || multiplier.IsNegative() || multiplier.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "multiplier must be a positive decimal")
		}
		option.Multiplier = multiplier
	}
	if input.MaxFlavors > 0 {
		option.MaxFlavors = input.MaxFlavors
	}
	option.IsDefault = input.IsDefault
	if input.IsActive != nil {
		option.IsActive = *input.IsActive
	}
	if input.SortOrder > 0 {
		option.SortOrder = input.SortOrder
	}

	if _, err := s.repo.UpdateOption(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update builder option")
	}
	dto := toPizzaOptionDTO(*option)
	return &dto, nil
}

func (s *service) DeleteOption(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindOptionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "builder option not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load builder option")
	}
	if err := s.repo.DeleteOption(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete builder option")
	}
	return nil
}

func parsePrice(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal string")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	return price, nil
}
