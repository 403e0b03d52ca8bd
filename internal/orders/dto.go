package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/db/models"
)

// OrderDTO is the transport shape with formatted money fields.
type OrderDTO struct {
	ID             uuid.UUID      `json:"id"`
	UserID         *uuid.UUID     `json:"user_id,omitempty"`
	Status         string         `json:"status"`
	Subtotal       string         `json:"subtotal"`
	Discount       string         `json:"discount"`
	DeliveryFee    string         `json:"delivery_fee"`
	Total          string         `json:"total"`
	Address        string         `json:"address"`
	PaymentMethod  string         `json:"payment_method"`
	ChangeFor      *string        `json:"change_for,omitempty"`
	CouponCode     *string        `json:"coupon_code,omitempty"`
	PointsEarned   int            `json:"points_earned"`
	PointsRedeemed int            `json:"points_redeemed"`
	Observations   *string        `json:"observations,omitempty"`
	PixPayload     *string        `json:"pix_payload,omitempty"`
	PixExpiresAt   *time.Time     `json:"pix_expires_at,omitempty"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time     `json:"cancelled_at,omitempty"`
	Items          []OrderItemDTO `json:"items"`
	CreatedAt      time.Time      `json:"created_at"`
}

// OrderItemDTO mirrors the denormalized line snapshot.
type OrderItemDTO struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	Size         *string   `json:"size,omitempty"`
	Flavors      []string  `json:"flavors,omitempty"`
	Crust        *string   `json:"crust,omitempty"`
	Dough        *string   `json:"dough,omitempty"`
	Extras       []string  `json:"extras,omitempty"`
	Quantity     int       `json:"quantity"`
	UnitPrice    string    `json:"unit_price"`
	Total        string    `json:"total"`
	Observations *string   `json:"observations,omitempty"`
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	dto := &OrderDTO{
		ID:             order.ID,
		UserID:         order.UserID,
		Status:         order.Status.String(),
		Subtotal:       order.Subtotal.StringFixed(2),
		Discount:       order.Discount.StringFixed(2),
		DeliveryFee:    order.DeliveryFee.StringFixed(2),
		Total:          order.Total.StringFixed(2),
		Address:        order.Address,
		PaymentMethod:  order.PaymentMethod.String(),
		CouponCode:     order.CouponCode,
		PointsEarned:   order.PointsEarned,
		PointsRedeemed: order.PointsRedeemed,
		Observations:   order.Observations,
		PixPayload:     order.PixPayload,
		PixExpiresAt:   order.PixExpiresAt,
		ConfirmedAt:    order.ConfirmedAt,
		DeliveredAt:    order.DeliveredAt,
		CancelledAt:    order.CancelledAt,
		Items:          make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:      order.CreatedAt,
	}
	if order.ChangeFor != nil {
		change := order.ChangeFor.StringFixed(2)
		dto.ChangeFor = &change
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:           item.ID,
			Type:         item.Type.String(),
			Name:         item.Name,
			Size:         item.Size,
			Flavors:      item.Flavors,
			Crust:        item.Crust,
			Dough:        item.Dough,
			Extras:       item.Extras,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice.StringFixed(2),
			Total:        item.Total.StringFixed(2),
			Observations: item.Observations,
		})
	}
	return dto
}

// FromModels maps a page of orders.
func FromModels(orders []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *FromModel(&orders[i]))
	}
	return dtos
}
