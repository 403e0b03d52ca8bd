package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service prices a pizza configuration. The wizard itself lives client-side;
// the server is the authority on option validity and on the final price.
type Service interface {
	Quote(ctx context.Context, selection Selection) (*Quote, error)
}

// Selection is the full set of wizard choices submitted for pricing.
// Crust and dough may be omitted; the flagged default option applies.
type Selection struct {
	SizeID       uuid.UUID
	FlavorIDs    []uuid.UUID
	CrustID      *uuid.UUID
	DoughID      *uuid.UUID
	ExtraIDs     []uuid.UUID
	Quantity     int
	Observations *string
}

// Quote is the priced result of a valid selection, ready to become a cart line.
type Quote struct {
	Name         string          `json:"name"`
	Size         string          `json:"size"`
	Flavors      []string        `json:"flavors"`
	Crust        string          `json:"crust"`
	Dough        string          `json:"dough"`
	Extras       []string        `json:"extras"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	Observations *string         `json:"observations,omitempty"`
}

type optionSource interface {
	FindPizzasByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Pizza, error)
	FindOptionByID(ctx context.Context, id uuid.UUID) (*models.PizzaOption, error)
	FindOptionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PizzaOption, error)
	ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]models.PizzaOption, error)
}

type service struct {
	catalog optionSource
}

// NewService wires the builder against the catalog repository.
func NewService(catalog optionSource) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	return &service{catalog: catalog}, nil
}

func (s *service) Quote(ctx context.Context, selection Selection) (*Quote, error) {
	if selection.SizeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if len(selection.FlavorIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one flavor is required")
	}
	quantity := selection.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	size, err := s.loadOption(ctx, selection.SizeID, enums.PizzaOptionSize)
	if err != nil {
		return nil, err
	}
	if dup := firstDuplicate(selection.FlavorIDs); dup != uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate flavor selection")
	}
	if len(selection.FlavorIDs) > size.MaxFlavors {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("size %s allows at most %d flavors", size.Name, size.MaxFlavors))
	}

	flavors, err := s.loadFlavors(ctx, selection.FlavorIDs)
	if err != nil {
		return nil, err
	}

	crust, err := s.loadOptionOrDefault(ctx, selection.CrustID, enums.PizzaOptionCrust)
	if err != nil {
		return nil, err
	}
	dough, err := s.loadOptionOrDefault(ctx, selection.DoughID, enums.PizzaOptionDough)
	if err != nil {
		return nil, err
	}
	extras, err := s.loadExtras(ctx, selection.ExtraIDs)
	if err != nil {
		return nil, err
	}

	// Highest flavor price wins, scaled by the chosen size.
	basePrice := decimal.Zero
	flavorNames := make([]string, 0, len(flavors))
	for _, flavor := range flavors {
		if flavor.BasePrice.GreaterThan(basePrice) {
			basePrice = flavor.BasePrice
		}
		flavorNames = append(flavorNames, flavor.Name)
	}

	unitPrice := basePrice.Mul(size.Multiplier)
	if crust != nil {
		unitPrice = unitPrice.Add(crust.Price)
	}
	if dough != nil {
		unitPrice = unitPrice.Add(dough.Price)
	}
	extraNames := make([]string, 0, len(extras))
	for _, extra := range extras {
		unitPrice = unitPrice.Add(extra.Price)
		extraNames = append(extraNames, extra.Name)
	}
	unitPrice = unitPrice.Round(2)

	quote := &Quote{
		Name:         pizzaName(size.Name, flavorNames),
		Size:         size.Name,
		Flavors:      flavorNames,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Total:        unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		Observations: selection.Observations,
	}
	if crust != nil {
		quote.Crust = crust.Name
	}
	if dough != nil {
		quote.Dough = dough.Name
	}
	quote.Extras = extraNames
	return quote, nil
}

func (s *service) loadOption(ctx context.Context, id uuid.UUID, kind enums.PizzaOptionKind) (*models.PizzaOption, error) {
	option, err := s.catalog.FindOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s option", kind))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load builder option")
	}
	if option.Kind != kind || !option.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s option", kind))
	}
	return option, nil
}

// loadOptionOrDefault resolves the explicit choice, or falls back to the
// flagged default for the kind. A kind without a default simply contributes
// nothing to the price.
func (s *service) loadOptionOrDefault(ctx context.Context, id *uuid.UUID, kind enums.PizzaOptionKind) (*models.PizzaOption, error) {
	if id != nil {
		return s.loadOption(ctx, *id, kind)
	}
	options, err := s.catalog.ListOptions(ctx, &kind, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list builder options")
	}
	for i := range options {
		if options[i].IsDefault {
			return &options[i], nil
		}
	}
	return nil, nil
}

func (s *service) loadFlavors(ctx context.Context, ids []uuid.UUID) ([]models.Pizza, error) {
	pizzas, err := s.catalog.FindPizzasByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load flavors")
	}
	byID := make(map[uuid.UUID]models.Pizza, len(pizzas))
	for _, pizza := range pizzas {
		byID[pizza.ID] = pizza
	}
	ordered := make([]models.Pizza, 0, len(ids))
	for _, id := range ids {
		pizza, ok := byID[id]
		if !ok || !pizza.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown flavor")
		}
		ordered = append(ordered, pizza)
	}
	return ordered, nil
}

func (s *service) loadExtras(ctx context.Context, ids []uuid.UUID) ([]models.PizzaOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if dup := firstDuplicate(ids); dup != uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate extra selection")
	}
	options, err := s.catalog.FindOptionsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load extras")
	}
	byID := make(map[uuid.UUID]models.PizzaOption, len(options))
	for _, option := range options {
		byID[option.ID] = option
	}
	ordered := make([]models.PizzaOption, 0, len(ids))
	for _, id := range ids {
		option, ok := byID[id]
		if !ok || option.Kind != enums.PizzaOptionExtra || !option.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown extra option")
		}
		ordered = append(ordered, option)
	}
	return ordered, nil
}

func firstDuplicate(ids []uuid.UUID) uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return uuid.Nil
}

func pizzaName(size string, flavors []string) string {
	return fmt.Sprintf("Pizza %s (%s)", size, strings.Join(flavors, " / "))
}
