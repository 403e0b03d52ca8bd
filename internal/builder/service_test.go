package builder

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

type fakeCatalog struct {
	pizzas  map[uuid.UUID]models.Pizza
	options map[uuid.UUID]models.PizzaOption
}

func (f *fakeCatalog) FindPizzasByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Pizza, error) {
	var out []models.Pizza
	for _, id := range ids {
		if pizza, ok := f.pizzas[id]; ok {
			out = append(out, pizza)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.PizzaOption, error) {
	if option, ok := f.options[id]; ok {
		return &option, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) FindOptionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PizzaOption, error) {
	var out []models.PizzaOption
	for _, id := range ids {
		if option, ok := f.options[id]; ok {
			out = append(out, option)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListOptions(ctx context.Context, kind *enums.PizzaOptionKind, includeInactive bool) ([]models.PizzaOption, error) {
	var out []models.PizzaOption
	for _, option := range f.options {
		if kind != nil && option.Kind != *kind {
			continue
		}
		if !includeInactive && !option.IsActive {
			continue
		}
		out = append(out, option)
	}
	return out, nil
}

func newFakeCatalog() (*fakeCatalog, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"calabresa":   uuid.New(),
		"marguerita":  uuid.New(),
		"grande":      uuid.New(),
		"broto":       uuid.New(),
		"semBorda":    uuid.New(),
		"catupiry":    uuid.New(),
		"tradicional": uuid.New(),
		"bacon":       uuid.New(),
	}
	catalog := &fakeCatalog{
		pizzas: map[uuid.UUID]models.Pizza{
			ids["calabresa"]: {
				ID:        ids["calabresa"],
				Name:      "Calabresa",
				BasePrice: decimal.RequireFromString("35.90"),
				IsActive:  true,
			},
			ids["marguerita"]: {
				ID:        ids["marguerita"],
				Name:      "Marguerita",
				BasePrice: decimal.RequireFromString("38.90"),
				IsActive:  true,
			},
		},
		options: map[uuid.UUID]models.PizzaOption{
			ids["grande"]: {
				ID:         ids["grande"],
				Kind:       enums.PizzaOptionSize,
				Name:       "Grande",
				Multiplier: decimal.RequireFromString("1.00"),
				MaxFlavors: 2,
				IsActive:   true,
			},
			ids["broto"]: {
				ID:         ids["broto"],
				Kind:       enums.PizzaOptionSize,
				Name:       "Broto",
				Multiplier: decimal.RequireFromString("0.70"),
				MaxFlavors: 1,
				IsActive:   true,
			},
			ids["semBorda"]: {
				ID:         ids["semBorda"],
				Kind:       enums.PizzaOptionCrust,
				Name:       "Sem borda",
				Price:      decimal.Zero,
				Multiplier: decimal.NewFromInt(1),
				IsDefault:  true,
				IsActive:   true,
			},
			ids["catupiry"]: {
				ID:         ids["catupiry"],
				Kind:       enums.PizzaOptionCrust,
				Name:       "Catupiry",
				Price:      decimal.RequireFromString("8.90"),
				Multiplier: decimal.NewFromInt(1),
				IsActive:   true,
			},
			ids["tradicional"]: {
				ID:         ids["tradicional"],
				Kind:       enums.PizzaOptionDough,
				Name:       "Tradicional",
				Price:      decimal.Zero,
				Multiplier: decimal.NewFromInt(1),
				IsDefault:  true,
				IsActive:   true,
			},
			ids["bacon"]: {
				ID:         ids["bacon"],
				Kind:       enums.PizzaOptionExtra,
				Name:       "Bacon",
				Price:      decimal.RequireFromString("5.00"),
				Multiplier: decimal.NewFromInt(1),
				IsActive:   true,
			},
		},
	}
	return catalog, ids
}

func TestQuoteHighestFlavorPriceWins(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, err := NewService(catalog)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	crustID := ids["catupiry"]
	quote, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["grande"],
		FlavorIDs: []uuid.UUID{ids["calabresa"], ids["marguerita"]},
		CrustID:   &crustID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}

	// 38.90 * 1.00 + 8.90 crust = 47.80, half-and-half does not average.
	if got := quote.UnitPrice.StringFixed(2); got != "47.80" {
		t.Fatalf("expected unit price 47.80, got %s", got)
	}
	if quote.Crust != "Catupiry" {
		t.Fatalf("expected crust Catupiry, got %s", quote.Crust)
	}
	if quote.Dough != "Tradicional" {
		t.Fatalf("expected default dough, got %q", quote.Dough)
	}
	if len(quote.Flavors) != 2 {
		t.Fatalf("expected 2 flavors, got %d", len(quote.Flavors))
	}
}

func TestQuoteSizeMultiplierAndExtras(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, _ := NewService(catalog)

	quote, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["broto"],
		FlavorIDs: []uuid.UUID{ids["calabresa"]},
		ExtraIDs:  []uuid.UUID{ids["bacon"]},
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}

	// 35.90 * 0.70 = 25.13, + 5.00 bacon = 30.13 each.
	if got := quote.UnitPrice.StringFixed(2); got != "30.13" {
		t.Fatalf("expected unit price 30.13, got %s", got)
	}
	if got := quote.Total.StringFixed(2); got != "60.26" {
		t.Fatalf("expected total 60.26, got %s", got)
	}
}

func TestQuoteRejectsTooManyFlavors(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, _ := NewService(catalog)

	_, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["broto"],
		FlavorIDs: []uuid.UUID{ids["calabresa"], ids["marguerita"]},
	})
	if err == nil {
		t.Fatal("expected flavor cap error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteRejectsUnknownFlavor(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, _ := NewService(catalog)

	_, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["grande"],
		FlavorIDs: []uuid.UUID{uuid.New()},
	})
	if err == nil {
		t.Fatal("expected unknown flavor error")
	}
}

func TestQuoteRejectsWrongOptionKind(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, _ := NewService(catalog)

	// Passing a crust where a size is expected must fail validation.
	_, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["catupiry"],
		FlavorIDs: []uuid.UUID{ids["calabresa"]},
	})
	if err == nil {
		t.Fatal("expected option kind error")
	}
}

func TestQuoteRejectsDuplicateFlavors(t *testing.T) {
	catalog, ids := newFakeCatalog()
	svc, _ := NewService(catalog)

	_, err := svc.Quote(context.Background(), Selection{
		SizeID:    ids["grande"],
		FlavorIDs: []uuid.UUID{ids["calabresa"], ids["calabresa"]},
	})
	if err == nil {
		t.Fatal("expected duplicate flavor error")
	}
}
