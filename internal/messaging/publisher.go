package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/mindfulpages/order-intake/internal/events"
)

// EventPublisher is what the order service depends on; tests substitute it
// with a recording fake.
type EventPublisher interface {
	PublishOrderEvent(event events.OrderEvent) error
}

type Publisher struct {
	client *RabbitMQClient
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishOrderEvent(event events.OrderEvent) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %v", err)
	}

	routingKey := fmt.Sprintf("orders.%s.%s", event.Service, string(event.EventType))

	channel := p.client.Channel()
	err = channel.Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.Timestamp,
			Headers: amqp.Table{
				"order_id":       event.OrderID.String(),
				"order_number":   event.OrderNumber,
				"correlation_id": event.CorrelationID.String(),
				"service":        event.Service,
				"event_type":     string(event.EventType),
			},
		},
	)

	if err != nil {
		return fmt.Errorf("event publish error: %v", err)
	}

	log.Printf("Event published: %s -> %s", routingKey, event.EventType)
	return nil
}
