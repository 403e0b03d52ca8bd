package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// BannerDTO is the transport shape for promo banners.
type BannerDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   *string   `json:"link_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input holds the validated payload to create or update a banner.
type Input struct {
	Title     string
	ImageURL  string
	LinkURL   *string
	IsActive  *bool
	SortOrder int
}

// Service exposes the public banner list and the back-office CRUD.
type Service interface {
	ListActive(ctx context.Context) ([]BannerDTO, error)
	List(ctx context.Context) ([]BannerDTO, error)
	Create(ctx context.Context, input Input) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bannerStore interface {
	List(ctx context.Context, includeInactive bool) ([]models.Banner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Create(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	Update(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo bannerStore
}

// NewService wires a banner service with the provided repository.
func NewService(repo bannerStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]BannerDTO, error) {
	return s.list(ctx, false)
}

func (s *service) List(ctx context.Context) ([]BannerDTO, error) {
	return s.list(ctx, true)
}

func (s *service) list(ctx context.Context, includeInactive bool) ([]BannerDTO, error) {
	banners, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	dtos := make([]BannerDTO, 0, len(banners))
	for _, banner := range banners {
		dtos = append(dtos, toDTO(banner))
	}
	return dtos, nil
}

func (s *service) Create(ctx context.Context, input Input) (*BannerDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	banner := &models.Banner{
		Title:     strings.TrimSpace(input.Title),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		LinkURL:   input.LinkURL,
		IsActive:  true,
		SortOrder: input.SortOrder,
	}
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}

	created, err := s.repo.Create(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create banner")
	}
	dto := toDTO(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*BannerDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find banner")
	}

	banner.Title = strings.TrimSpace(input.Title)
	banner.ImageURL = strings.TrimSpace(input.ImageURL)
	banner.LinkURL = input.LinkURL
	banner.SortOrder = input.SortOrder
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner")
	}
	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete banner")
	}
	return nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image_url is required")
	}
	return nil
}

func toDTO(banner models.Banner) BannerDTO {
	return BannerDTO{
		ID:        banner.ID,
		Title:     banner.Title,
		ImageURL:  banner.ImageURL,
		LinkURL:   banner.LinkURL,
		IsActive:  banner.IsActive,
		SortOrder: banner.SortOrder,
		CreatedAt: banner.CreatedAt,
		UpdatedAt: banner.UpdatedAt,
	}
}
