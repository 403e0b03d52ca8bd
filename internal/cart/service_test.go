package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/internal/builder"
	"github.com/fornodoro/backend/pkg/db/models"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

type memoryStore struct {
	carts map[string]*Cart
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: map[string]*Cart{}}
}

func (m *memoryStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		clone := *cart
		clone.Lines = append([]Line{}, cart.Lines...)
		return &clone, nil
	}
	return &Cart{SessionID: sessionID, Lines: []Line{}}, nil
}

func (m *memoryStore) Save(ctx context.Context, cart *Cart) error {
	m.carts[cart.SessionID] = cart
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type fakeBuilder struct {
	quote *builder.Quote
	err   error
}

func (f *fakeBuilder) Quote(ctx context.Context, selection builder.Selection) (*builder.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

type fakeProducts struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeProducts) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f.products[id]; ok {
		return &product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newService(t *testing.T, store Store, builderSvc builder.Service, products productLoader) Service {
	t.Helper()
	svc, err := NewService(store, builderSvc, products)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestAddPizzaAppendsLine(t *testing.T) {
	quote := &builder.Quote{
		Name:      "Pizza Grande (Calabresa / Marguerita)",
		Size:      "Grande",
		Flavors:   []string{"Calabresa", "Marguerita"},
		Crust:     "Catupiry",
		Dough:     "Tradicional",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("47.80"),
		Total:     decimal.RequireFromString("47.80"),
	}
	svc := newService(t, newMemoryStore(), &fakeBuilder{quote: quote}, &fakeProducts{})

	dto, err := svc.AddPizza(context.Background(), "sess-1", builder.Selection{})
	if err != nil {
		t.Fatalf("AddPizza error: %v", err)
	}
	if len(dto.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(dto.Lines))
	}
	if dto.Subtotal != "47.80" {
		t.Fatalf("expected subtotal 47.80, got %s", dto.Subtotal)
	}

	// A second identical pizza still becomes its own line.
	dto, err = svc.AddPizza(context.Background(), "sess-1", builder.Selection{})
	if err != nil {
		t.Fatalf("AddPizza error: %v", err)
	}
	if len(dto.Lines) != 2 {
		t.Fatalf("expected pizzas to never merge, got %d lines", len(dto.Lines))
	}
}

func TestAddProductMergesByCatalogID(t *testing.T) {
	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]models.Product{
		productID: {
			ID:       productID,
			Name:     "Guaraná 2L",
			Price:    decimal.RequireFromString("12.00"),
			IsActive: true,
		},
	}}
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, products)

	if _, err := svc.AddProduct(context.Background(), "sess-1", productID); err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}
	dto, err := svc.AddProduct(context.Background(), "sess-1", productID)
	if err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}

	if len(dto.Lines) != 1 {
		t.Fatalf("expected merged product line, got %d lines", len(dto.Lines))
	}
	if dto.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", dto.Lines[0].Quantity)
	}
	if dto.Subtotal != "24.00" {
		t.Fatalf("expected subtotal 24.00, got %s", dto.Subtotal)
	}
}

func TestAddProductMergeKeepsPriceSnapshot(t *testing.T) {
	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]models.Product{
		productID: {
			ID:       productID,
			Name:     "Guaraná 2L",
			Price:    decimal.RequireFromString("12.00"),
			IsActive: true,
		},
	}}
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, products)

	if _, err := svc.AddProduct(context.Background(), "sess-1", productID); err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}

	// The catalog price moves; the existing line must not.
	repriced := products.products[productID]
	repriced.Price = decimal.RequireFromString("15.00")
	products.products[productID] = repriced

	dto, err := svc.AddProduct(context.Background(), "sess-1", productID)
	if err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Quantity != 2 {
		t.Fatalf("expected one merged line with quantity 2, got %+v", dto.Lines)
	}
	if dto.Lines[0].UnitPrice != "12.00" {
		t.Fatalf("merge must keep the snapshotted unit price, got %s", dto.Lines[0].UnitPrice)
	}
	if dto.Subtotal != "24.00" {
		t.Fatalf("expected subtotal 24.00, got %s", dto.Subtotal)
	}
}

func TestAddProductUnknownID(t *testing.T) {
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, &fakeProducts{})

	_, err := svc.AddProduct(context.Background(), "sess-1", uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Pudim", Price: decimal.RequireFromString("9.50"), IsActive: true},
	}}
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, products)

	dto, err := svc.AddProduct(context.Background(), "sess-1", productID)
	if err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}
	lineID := dto.Lines[0].ID

	dto, err = svc.SetQuantity(context.Background(), "sess-1", lineID, 0)
	if err != nil {
		t.Fatalf("SetQuantity error: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Lines))
	}
	if dto.ItemCount != 0 {
		t.Fatalf("expected item count 0, got %d", dto.ItemCount)
	}
}

func TestSetQuantityReplacesValue(t *testing.T) {
	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Brownie", Price: decimal.RequireFromString("8.00"), IsActive: true},
	}}
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, products)

	dto, _ := svc.AddProduct(context.Background(), "sess-1", productID)
	dto, err := svc.SetQuantity(context.Background(), "sess-1", dto.Lines[0].ID, 5)
	if err != nil {
		t.Fatalf("SetQuantity error: %v", err)
	}
	if dto.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", dto.Lines[0].Quantity)
	}
	if dto.Subtotal != "40.00" {
		t.Fatalf("expected subtotal 40.00, got %s", dto.Subtotal)
	}
}

func TestRemoveLineIsIdempotent(t *testing.T) {
	svc := newService(t, newMemoryStore(), &fakeBuilder{}, &fakeProducts{})

	dto, err := svc.RemoveLine(context.Background(), "sess-1", uuid.New())
	if err != nil {
		t.Fatalf("RemoveLine should be a no-op for unknown ids: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Lines))
	}
}

func TestClearEmptiesCart(t *testing.T) {
	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Coca 2L", Price: decimal.RequireFromString("14.00"), IsActive: true},
	}}
	store := newMemoryStore()
	svc := newService(t, store, &fakeBuilder{}, products)

	if _, err := svc.AddProduct(context.Background(), "sess-1", productID); err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}
	if err := svc.Clear(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	dto, err := svc.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("expected cleared cart, got %d lines", len(dto.Lines))
	}
}
