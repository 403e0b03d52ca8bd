package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/fornodoro/backend/pkg/db"
	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/outbox/idempotency"
	"github.com/fornodoro/backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches the order event feed and turns lifecycle changes into
// in-app notifications for the customer.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := c.buildNotification(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event type not handled")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		// The unique index absorbs duplicate deliveries of the same change.
		if db.IsUniqueViolation(err, "ux_notifications_user_order_status") {
			c.logg.Info(logCtx, "notification already stored")
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "customer notified of order change")
	return processResult{ack: true}
}

func (c *Consumer) buildNotification(eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	switch eventType {
	case enums.EventOrderCreated:
		var payload payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.UserID == uuid.Nil {
			return nil, fmt.Errorf("user id missing")
		}
		message := fmt.Sprintf("Recebemos seu pedido! Total: R$ %s.", payload.Total)
		if payload.Status == enums.OrderStatusPendingPayment {
			message = fmt.Sprintf("Pedido criado. Pague o Pix de R$ %s para confirmar.", payload.Total)
		}
		return &models.Notification{
			UserID:  payload.UserID,
			OrderID: payload.OrderID,
			Status:  payload.Status,
			Type:    enums.NotificationOrderStatus,
			Title:   "Pedido recebido",
			Message: message,
		}, nil

	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.UserID == uuid.Nil {
			return nil, fmt.Errorf("user id missing")
		}
		title, message := statusCopy(payload.ToStatus)
		return &models.Notification{
			UserID:  payload.UserID,
			OrderID: payload.OrderID,
			Status:  payload.ToStatus,
			Type:    enums.NotificationOrderStatus,
			Title:   title,
			Message: message,
		}, nil

	case enums.EventOrderPaymentTimedOut:
		var payload payloads.OrderPaymentTimedOutEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.UserID == uuid.Nil {
			return nil, fmt.Errorf("user id missing")
		}
		message := "O prazo de pagamento do Pix expirou e o pedido foi cancelado."
		if payload.PointsRefunded > 0 {
			message = fmt.Sprintf("%s Seus %d pontos foram devolvidos.", message, payload.PointsRefunded)
		}
		return &models.Notification{
			UserID:  payload.UserID,
			OrderID: payload.OrderID,
			Status:  enums.OrderStatusCancelled,
			Type:    enums.NotificationPaymentTimeout,
			Title:   "Pagamento expirado",
			Message: message,
		}, nil
	}
	return nil, nil
}

func statusCopy(status enums.OrderStatus) (string, string) {
	switch status {
	case enums.OrderStatusConfirmed:
		return "Pedido confirmado", "Pagamento confirmado! Seu pedido entrou na fila da cozinha."
	case enums.OrderStatusPreparing:
		return "Pedido em preparo", "Sua pizza está no forno."
	case enums.OrderStatusDelivering:
		return "Pedido a caminho", "O entregador saiu com o seu pedido."
	case enums.OrderStatusDelivered:
		return "Pedido entregue", "Bom apetite! Obrigado por pedir no Forno d'Oro."
	case enums.OrderStatusCancelled:
		return "Pedido cancelado", "Seu pedido foi cancelado."
	default:
		return "Pedido atualizado", fmt.Sprintf("Status do pedido: %s.", status)
	}
}
