package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mindfulpages/order-intake/internal/domain"
)

type OrderEventType string

const (
	// OrderRecordedEvent fires once the order row is durably written.
	OrderRecordedEvent OrderEventType = "order.recorded"

	// Retry events carry the best-effort work that failed inline; the
	// fulfillment consumer re-attempts it off the request path.
	ItemsRetryEvent  OrderEventType = "order.items.retry"
	NotifyRetryEvent OrderEventType = "order.notify.retry"
)

type OrderEvent struct {
	ID            uuid.UUID      `json:"id"`
	OrderID       uuid.UUID      `json:"order_id"`
	OrderNumber   string         `json:"order_number"`
	EventType     OrderEventType `json:"event_type"`
	Payload       interface{}    `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	Service       string         `json:"service"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
}

type OrderRecordedPayload struct {
	Order domain.Order `json:"order"`
}

type ItemsRetryPayload struct {
	Order      domain.Order `json:"order"`
	Privileged bool         `json:"privileged"`
	Reason     string       `json:"reason"`
}

type NotifyRetryPayload struct {
	Order  domain.Order `json:"order"`
	Reason string       `json:"reason"`
}
