package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service reads and updates the single storefront settings row.
type Service interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.StoreSettings, error)
}

// UpdateInput carries the editable storefront fields. Nil pointers leave the
// current value untouched.
type UpdateInput struct {
	StoreName     *string
	DeliveryFee   *string
	MinOrderValue *string
	IsOpen        *bool
	OpeningHours  *string
	WhatsAppPhone *string
}

type service struct {
	db *gorm.DB
}

// NewService returns a settings service bound to the provided database.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db}, nil
}

func (s *service) Get(ctx context.Context) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	if err := s.db.WithContext(ctx).First(&settings, "id = 1").Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "store settings row missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store settings")
	}
	return &settings, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.StoreSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.StoreName != nil {
		if *input.StoreName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_name cannot be empty")
		}
		settings.StoreName = *input.StoreName
	}
	if input.DeliveryFee != nil {
		fee, err := parseMoney(*input.DeliveryFee, "delivery_fee")
		if err != nil {
			return nil, err
		}
		settings.DeliveryFee = fee
	}
	if input.MinOrderValue != nil {
		min, err := parseMoney(*input.MinOrderValue, "min_order_value")
		if err != nil {
			return nil, err
		}
		settings.MinOrderValue = min
	}
	if input.IsOpen != nil {
		settings.IsOpen = *input.IsOpen
	}
	if input.OpeningHours != nil {
		settings.OpeningHours = input.OpeningHours
	}
	if input.WhatsAppPhone != nil {
		settings.WhatsAppPhone = input.WhatsAppPhone
	}

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update store settings")
	}
	return settings, nil
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s must be a non-negative decimal", field))
	}
	return value.Round(2), nil
}
