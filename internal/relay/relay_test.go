package relay

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

func TestOrderLinkEncodesSummary(t *testing.T) {
	phone := "+55 (11) 99876-5432"
	svc := newTestRelay(t, &models.StoreSettings{WhatsAppPhone: &phone})
	order := sampleOrder()

	link, err := svc.OrderLink(context.Background(), order)
	if err != nil {
		t.Fatalf("order link: %v", err)
	}

	if !strings.HasPrefix(link, "https://wa.me/5511998765432?text=") {
		t.Fatalf("expected digits-only wa.me link, got %q", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	text := parsed.Query().Get("text")
	if !strings.Contains(text, "2x Pizza grande (grande) - Calabresa / Marguerita") {
		t.Fatalf("expected item line in text, got %q", text)
	}
	if !strings.Contains(text, "Total: R$ 75.80") {
		t.Fatalf("expected total in text, got %q", text)
	}
	if !strings.Contains(text, "Dinheiro (troco para R$ 100.00)") {
		t.Fatalf("expected cash-with-change label, got %q", text)
	}
}

func TestOrderLinkWithoutConfiguredPhone(t *testing.T) {
	svc := newTestRelay(t, &models.StoreSettings{})

	_, err := svc.OrderLink(context.Background(), sampleOrder())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSummaryPixOrder(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = enums.PaymentMethodPix
	order.ChangeFor = nil

	text := Summary(order)
	if !strings.Contains(text, "Pagamento: PIX") {
		t.Fatalf("expected pix payment label, got %q", text)
	}
	if !strings.Contains(text, "Desconto: -R$ 5.00") {
		t.Fatalf("expected discount line, got %q", text)
	}
}

func newTestRelay(t *testing.T, settings *models.StoreSettings) Service {
	t.Helper()
	svc, err := NewService(stubSettings{settings: settings})
	if err != nil {
		t.Fatalf("build relay: %v", err)
	}
	return svc
}

func sampleOrder() *models.Order {
	size := "grande"
	change := decimal.RequireFromString("100.00")
	return &models.Order{
		ID:            uuid.MustParse("a3bb189e-8bf9-3888-9912-ace4e6543002"),
		Subtotal:      decimal.RequireFromString("74.90"),
		Discount:      decimal.RequireFromString("5.00"),
		DeliveryFee:   decimal.RequireFromString("5.90"),
		Total:         decimal.RequireFromString("75.80"),
		Address:       "Rua Augusta, 1200",
		PaymentMethod: enums.PaymentMethodCash,
		ChangeFor:     &change,
		Items: []models.OrderItem{
			{
				Type:      enums.OrderItemTypePizza,
				Name:      "Pizza grande",
				Size:      &size,
				Flavors:   []string{"Calabresa", "Marguerita"},
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("37.45"),
				Total:     decimal.RequireFromString("74.90"),
			},
		},
	}
}

type stubSettings struct {
	settings *models.StoreSettings
}

func (s stubSettings) Get(ctx context.Context) (*models.StoreSettings, error) {
	return s.settings, nil
}
