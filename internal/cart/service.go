package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/internal/builder"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*DTO, error)
	AddPizza(ctx context.Context, sessionID string, selection builder.Selection) (*DTO, error)
	AddProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error)
	SetQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*DTO, error)
	RemoveLine(ctx context.Context, sessionID string, lineID uuid.UUID) (*DTO, error)
	SetCoupon(ctx context.Context, sessionID string, code *string) (*DTO, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*Cart, error)
}

// DTO is the cart payload returned to clients.
type DTO struct {
	SessionID  string    `json:"session_id"`
	Lines      []LineDTO `json:"lines"`
	CouponCode *string   `json:"coupon_code,omitempty"`
	Subtotal   string    `json:"subtotal"`
	ItemCount  int       `json:"item_count"`
}

// LineDTO mirrors a cart line with formatted money fields.
type LineDTO struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	Name         string     `json:"name"`
	Size         *string    `json:"size,omitempty"`
	Flavors      []string   `json:"flavors,omitempty"`
	Crust        *string    `json:"crust,omitempty"`
	Dough        *string    `json:"dough,omitempty"`
	Extras       []string   `json:"extras,omitempty"`
	Quantity     int        `json:"quantity"`
	UnitPrice    string     `json:"unit_price"`
	Total        string     `json:"total"`
	Observations *string    `json:"observations,omitempty"`
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	store    Store
	builder  builder.Service
	products productLoader
}

// NewService wires the cart service.
func NewService(store Store, builderSvc builder.Service, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if builderSvc == nil {
		return nil, fmt.Errorf("builder service required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, builder: builderSvc, products: products}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*DTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

func (s *service) AddPizza(ctx context.Context, sessionID string, selection builder.Selection) (*DTO, error) {
	quote, err := s.builder.Quote(ctx, selection)
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Pizza configurations never merge; every commit is its own line.
	size := quote.Size
	line := Line{
		ID:           uuid.New(),
		Type:         enums.OrderItemTypePizza,
		Name:         quote.Name,
		Size:         &size,
		Flavors:      quote.Flavors,
		Quantity:     quote.Quantity,
		UnitPrice:    quote.UnitPrice,
		Observations: quote.Observations,
	}
	if quote.Crust != "" {
		crust := quote.Crust
		line.Crust = &crust
	}
	if quote.Dough != "" {
		dough := quote.Dough
		line.Dough = &dough
	}
	if len(quote.Extras) > 0 {
		line.Extras = quote.Extras
	}
	cart.Lines = append(cart.Lines, line)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

func (s *service) AddProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error) {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is unavailable")
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Same catalog item merges into the existing line. The line keeps the
	// unit price snapshotted when it was first added.
	if idx := cart.findProductLine(product.ID); idx >= 0 {
		cart.Lines[idx].Quantity++
	} else {
		id := product.ID
		cart.Lines = append(cart.Lines, Line{
			ID:        uuid.New(),
			Type:      enums.OrderItemTypeProduct,
			ProductID: &id,
			Name:      product.Name,
			Quantity:  1,
			UnitPrice: product.Price,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*DTO, error) {
	if quantity <= 0 {
		return s.RemoveLine(ctx, sessionID, lineID)
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := cart.findLine(lineID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	cart.Lines[idx].Quantity = quantity

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID string, lineID uuid.UUID) (*DTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Removal is idempotent; unknown line ids are a no-op.
	if idx := cart.findLine(lineID); idx >= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		if err := s.save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return toDTO(cart), nil
}

// SetCoupon attaches a coupon code to the cart, or clears it when nil. The
// code is only normalized here; checkout re-validates it atomically.
func (s *service) SetCoupon(ctx context.Context, sessionID string, code *string) (*DTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if code == nil {
		cart.CouponCode = nil
	} else {
		normalized := strings.ToUpper(strings.TrimSpace(*code))
		if normalized == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code cannot be empty")
		}
		cart.CouponCode = &normalized
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Snapshot returns the raw cart for checkout to consume.
func (s *service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, cart *Cart) error {
	if err := s.store.Save(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func toDTO(cart *Cart) *DTO {
	dto := &DTO{
		SessionID:  cart.SessionID,
		Lines:      make([]LineDTO, 0, len(cart.Lines)),
		CouponCode: cart.CouponCode,
		Subtotal:   cart.Subtotal().StringFixed(2),
		ItemCount:  cart.ItemCount(),
	}
	for _, line := range cart.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ID:           line.ID,
			Type:         line.Type.String(),
			ProductID:    line.ProductID,
			Name:         line.Name,
			Size:         line.Size,
			Flavors:      line.Flavors,
			Crust:        line.Crust,
			Dough:        line.Dough,
			Extras:       line.Extras,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice.StringFixed(2),
			Total:        line.Total().StringFixed(2),
			Observations: line.Observations,
		})
	}
	return dto
}
