package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
)

// Repository wires together all catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListPizzas returns flavors ordered by name. Inactive rows are only included
// for back-office listings.
func (r *Repository) ListPizzas(ctx context.Context, includeInactive bool) ([]models.Pizza, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = TRUE")
	}
	var pizzas []models.Pizza
	if err := query.Find(&pizzas).Error; err != nil {
		return nil, err
	}
	return pizzas, nil
}

// FindPizzaByID loads a single flavor.
func (r *Repository) FindPizzaByID(ctx context.Context, id uuid.UUID) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.WithContext(ctx).First(&pizza, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pizza, nil
}

// FindPizzasByIDs loads flavors by ID preserving no particular order.
func (r *Repository) FindPizzasByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Pizza, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var pizzas []models.Pizza
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&pizzas).Error; err != nil {
		return nil, err
	}
	return pizzas, nil
}

// CreatePizza inserts a new flavor row.
func (r *Repository) CreatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error) {
	if err := r.db.WithContext(ctx).Create(pizza).Error; err != nil {
		return nil, err
	}
	return pizza, nil
}

// UpdatePizza updates an existing flavor row.
func (r *Repository) UpdatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error) {
	if err := r.db.WithContext(ctx).Save(pizza).Error; err != nil {
		return nil, err
	}
	return pizza, nil
}

// DeletePizza removes a flavor by ID.
func (r *Repository) DeletePizza(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Pizza{}).Error
}

// ListProducts returns catalog products, optionally filtered by category.
func (r *Repository) ListProducts(ctx context.Context, category *enums.ProductCategory, includeInactive bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("category ASC").Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = TRUE")
	}
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindProductByID loads a single product.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ListOptions returns builder options sorted for display, optionally filtered
// by kind.
func (r *Repository) ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]models.PizzaOption, error) {
	query := r.db.WithContext(ctx).Order("kind ASC").Order("sort_order ASC")
	if !includeInactive {
		query = query.Where("is_active = TRUE")
	}
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	var options []models.PizzaOption
	if err := query.Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// FindOptionByID loads a single builder option.
func (r *Repository) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.PizzaOption, error) {
	var option models.PizzaOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// FindOptionsByIDs loads builder options by ID.
func (r *Repository) FindOptionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PizzaOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var options []models.PizzaOption
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// CreateOption inserts a new builder option row.
func (r *Repository) CreateOption(ctx context.Context, option *models.PizzaOption) (*models.PizzaOption, error) {
	if err := r.db.WithContext(ctx).Create(option).Error; err != nil {
		return nil, err
	}
	return option, nil
}

// UpdateOption updates an existing builder option row.
func (r *Repository) UpdateOption(ctx context.Context, option *models.PizzaOption) (*models.PizzaOption, error) {
	if err := r.db.WithContext(ctx).Save(option).Error; err != nil {
		return nil, err
	}
	return option, nil
}

// DeleteOption removes a builder option by ID.
func (r *Repository) DeleteOption(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PizzaOption{}).Error
}
