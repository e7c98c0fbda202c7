package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mindfulpages/order-intake/internal/events"
	"github.com/mindfulpages/order-intake/internal/mailer"
)

// FulfillmentService re-runs the best-effort work that failed inline during
// intake: line-item insertion and email dispatch. It consumes the retry
// events the order service publishes after the order row is durable.
type FulfillmentService struct {
	store         OrderStore
	mailer        mailer.Mailer
	operatorEmail string
}

func NewFulfillmentService(store OrderStore, m mailer.Mailer, operatorEmail string) *FulfillmentService {
	return &FulfillmentService{
		store:         store,
		mailer:        m,
		operatorEmail: operatorEmail,
	}
}

// ProcessRetryEvent dispatches one consumed event. Returning an error makes
// the messaging layer re-deliver with its bounded backoff.
func (s *FulfillmentService) ProcessRetryEvent(event events.OrderEvent) error {
	switch event.EventType {
	case events.ItemsRetryEvent:
		var payload events.ItemsRetryPayload
		if err := decodePayload(event.Payload, &payload); err != nil {
			return err
		}
		return s.retryItems(payload)

	case events.NotifyRetryEvent:
		var payload events.NotifyRetryPayload
		if err := decodePayload(event.Payload, &payload); err != nil {
			return err
		}
		return s.retryNotify(payload)

	default:
		return fmt.Errorf("unknown retry event: %s", event.EventType)
	}
}

func (s *FulfillmentService) retryItems(payload events.ItemsRetryPayload) error {
	if s.store == nil {
		return fmt.Errorf("no store configured for items retry")
	}
	if err := s.store.CreateOrderItems(payload.Order.Items, payload.Privileged); err != nil {
		return fmt.Errorf("items retry failed for order %s: %v", payload.Order.OrderNumber, err)
	}

	log.Printf("Order items recovered: OrderNumber=%s, items=%d",
		payload.Order.OrderNumber, len(payload.Order.Items))
	return nil
}

func (s *FulfillmentService) retryNotify(payload events.NotifyRetryPayload) error {
	order := payload.Order

	customerMsg, err := mailer.CustomerConfirmation(&order)
	if err != nil {
		return err
	}
	operatorMsg, err := mailer.OperatorAlert(&order, s.operatorEmail)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := s.mailer.Send(ctx, customerMsg); err != nil {
		return fmt.Errorf("customer email retry failed for order %s: %v", order.OrderNumber, err)
	}
	if err := s.mailer.Send(ctx, operatorMsg); err != nil {
		return fmt.Errorf("operator email retry failed for order %s: %v", order.OrderNumber, err)
	}

	log.Printf("Order emails recovered: OrderNumber=%s", order.OrderNumber)
	return nil
}

// decodePayload round-trips the payload through JSON; consumed events carry
// it as a generic map.
func decodePayload(payload interface{}, target interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payload marshal error: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("payload decode error: %v", err)
	}
	return nil
}
