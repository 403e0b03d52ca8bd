package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
)

// Repository exposes banner persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns banners ordered for display. Inactive rows are only included
// for back-office listings.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]models.Banner, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = TRUE")
	}
	var banners []models.Banner
	if err := query.Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// FindByID loads a single banner.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

// Create inserts a banner and returns the persisted row.
func (r *Repository) Create(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

// Update saves the full banner row.
func (r *Repository) Update(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.db.WithContext(ctx).Save(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

// Delete removes the banner row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
