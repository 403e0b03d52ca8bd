package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/enums"
)

// Line is one cart entry. Pizza lines carry the full builder configuration;
// product lines reference the catalog item so repeat adds can merge.
type Line struct {
	ID           uuid.UUID           `json:"id"`
	Type         enums.OrderItemType `json:"type"`
	ProductID    *uuid.UUID          `json:"product_id,omitempty"`
	Name         string              `json:"name"`
	Size         *string             `json:"size,omitempty"`
	Flavors      []string            `json:"flavors,omitempty"`
	Crust        *string             `json:"crust,omitempty"`
	Dough        *string             `json:"dough,omitempty"`
	Extras       []string            `json:"extras,omitempty"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	Observations *string             `json:"observations,omitempty"`
}

// Total returns quantity * unit price rounded to cents.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Cart is the session-scoped aggregate persisted in Redis.
type Cart struct {
	SessionID  string    `json:"session_id"`
	Lines      []Line    `json:"lines"`
	CouponCode *string   `json:"coupon_code,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Subtotal sums all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

// ItemCount sums quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) findLine(lineID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) findProductLine(productID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].Type == enums.OrderItemTypeProduct &&
			c.Lines[i].ProductID != nil && *c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
