package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

type settingsSource interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

// Service builds wa.me links carrying a human-readable order summary, so the
// storefront can hand the customer off to the store's WhatsApp.
type Service interface {
	OrderLink(ctx context.Context, order *models.Order) (string, error)
}

type service struct {
	settings settingsSource
}

// NewService wires the relay with the store settings source.
func NewService(settings settingsSource) (Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	return &service{settings: settings}, nil
}

func (s *service) OrderLink(ctx context.Context, order *models.Order) (string, error) {
	if order == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	phone := phoneDigits(settings.WhatsAppPhone)
	if phone == "" {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "store has no whatsapp number configured")
	}

	text := Summary(order)
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(text)), nil
}

// Summary renders the order as the plain-text message sent over WhatsApp.
func Summary(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Pedido %s*\n", shortID(order.ID.String()))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s", item.Quantity, item.Name)
		if item.Size != nil {
			fmt.Fprintf(&b, " (%s)", *item.Size)
		}
		if len(item.Flavors) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(item.Flavors, " / "))
		}
		fmt.Fprintf(&b, " ... R$ %s\n", item.Total.StringFixed(2))
		if item.Crust != nil {
			fmt.Fprintf(&b, "   borda: %s\n", *item.Crust)
		}
		if len(item.Extras) > 0 {
			fmt.Fprintf(&b, "   extras: %s\n", strings.Join(item.Extras, ", "))
		}
		if item.Observations != nil && *item.Observations != "" {
			fmt.Fprintf(&b, "   obs: %s\n", *item.Observations)
		}
	}

	fmt.Fprintf(&b, "\nSubtotal: R$ %s\n", order.Subtotal.StringFixed(2))
	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "Desconto: -R$ %s\n", order.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Entrega: R$ %s\n", order.DeliveryFee.StringFixed(2))
	fmt.Fprintf(&b, "*Total: R$ %s*\n", order.Total.StringFixed(2))

	fmt.Fprintf(&b, "\nPagamento: %s\n", paymentLabel(order))
	fmt.Fprintf(&b, "Endereço: %s\n", order.Address)
	if order.Observations != nil && *order.Observations != "" {
		fmt.Fprintf(&b, "Obs: %s\n", *order.Observations)
	}

	return b.String()
}

func paymentLabel(order *models.Order) string {
	switch order.PaymentMethod {
	case enums.PaymentMethodPix:
		return "PIX"
	case enums.PaymentMethodCash:
		if order.ChangeFor != nil {
			return fmt.Sprintf("Dinheiro (troco para R$ %s)", order.ChangeFor.StringFixed(2))
		}
		return "Dinheiro"
	case enums.PaymentMethodCard:
		return "Cartão na entrega"
	default:
		return string(order.PaymentMethod)
	}
}

// shortID keeps the first UUID block; enough for the attendant to match the
// order in the back-office.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return strings.ToUpper(id)
}

func phoneDigits(phone *string) string {
	if phone == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range *phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
