package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindfulpages/order-intake/internal/cache"
	"github.com/mindfulpages/order-intake/internal/domain"
	"github.com/mindfulpages/order-intake/internal/events"
	"github.com/mindfulpages/order-intake/internal/gateway"
	"github.com/mindfulpages/order-intake/internal/mailer"
	"github.com/mindfulpages/order-intake/internal/messaging"
)

const (
	serviceName = "order-intake"

	// Bounded regeneration on order-number collisions before giving up.
	maxNumberAttempts = 5

	orderCacheTTL = time.Minute * 10
)

// OrderStore is the persistence surface the service needs; the repository
// implements it, tests substitute fakes.
type OrderStore interface {
	CreateOrder(order *domain.Order) (privileged bool, err error)
	CreateOrderItems(items []domain.OrderItem, privileged bool) error
	GetOrderByNumber(orderNumber string) (*domain.Order, error)
}

type OrderService struct {
	store         OrderStore
	gateway       gateway.PaymentGateway
	mailer        mailer.Mailer
	publisher     messaging.EventPublisher
	cache         cache.Cache
	operatorEmail string
}

func NewOrderService(
	store OrderStore,
	paymentGateway gateway.PaymentGateway,
	m mailer.Mailer,
	publisher messaging.EventPublisher,
	c cache.Cache,
	operatorEmail string,
) *OrderService {
	return &OrderService{
		store:         store,
		gateway:       paymentGateway,
		mailer:        m,
		publisher:     publisher,
		cache:         c,
		operatorEmail: operatorEmail,
	}
}

// SubmitResult is what a successful intake reports back.
type SubmitResult struct {
	Order       *domain.Order
	EmailFailed bool
}

// SubmitOrder runs the intake sequence: verify payment, persist the order
// with bounded collision retry, then best-effort line items and emails.
// Everything after the order row is written can no longer fail the request.
func (s *OrderService) SubmitOrder(ctx context.Context, req domain.CheckoutRequest) (*SubmitResult, *domain.IntakeError) {
	if s.store == nil {
		return nil, domain.ErrServerConfiguration("database credentials are not configured")
	}

	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	// Card payments are verified only when an intent id accompanies them;
	// a card order without one is recorded unverified, as the storefront
	// has always done.
	if req.PaymentMethod == domain.PaymentMethodCard && req.PaymentIntentID != "" {
		intent, err := s.gateway.GetPaymentIntent(ctx, req.PaymentIntentID)
		if err != nil {
			log.Printf("Payment verification error: OrderIntent=%s, err=%v", req.PaymentIntentID, err)
			return nil, domain.ErrPaymentIncomplete("verification failed")
		}
		if intent.Status != gateway.PaymentIntentSucceeded {
			return nil, domain.ErrPaymentIncomplete(intent.Status)
		}
	}

	order, privileged, perr := s.persistOrder(req)
	if perr != nil {
		return nil, perr
	}

	log.Printf("Order recorded: Number=%s, ID=%s, Status=%s, Total=%.2f",
		order.OrderNumber, order.ID, order.Status, order.TotalAmount)

	s.publishEvent(events.OrderRecordedEvent, order, events.OrderRecordedPayload{Order: *order})

	if err := s.store.CreateOrderItems(order.Items, privileged); err != nil {
		// The order is already durable; item insertion is re-attempted by
		// the fulfillment consumer instead of failing the request.
		log.Printf("Order items insert failed: OrderNumber=%s, err=%v", order.OrderNumber, err)
		s.publishEvent(events.ItemsRetryEvent, order, events.ItemsRetryPayload{
			Order:      *order,
			Privileged: privileged,
			Reason:     err.Error(),
		})
	}

	emailFailed := s.sendOrderEmails(ctx, order)
	if emailFailed {
		s.publishEvent(events.NotifyRetryEvent, order, events.NotifyRetryPayload{
			Order:  *order,
			Reason: "email dispatch failed",
		})
	}

	return &SubmitResult{Order: order, EmailFailed: emailFailed}, nil
}

// persistOrder regenerates the display number and retries on collisions
// until the unique constraint admits the row or attempts run out.
func (s *OrderService) persistOrder(req domain.CheckoutRequest) (*domain.Order, bool, *domain.IntakeError) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order := domain.NewOrder(req, domain.NewOrderNumber(), time.Now())

		privileged, err := s.store.CreateOrder(order)
		if err == nil {
			return order, privileged, nil
		}

		if errors.Is(err, domain.ErrOrderNumberTaken) {
			log.Printf("Order number collision: %s (attempt %d/%d)", order.OrderNumber, attempt+1, maxNumberAttempts)
			continue
		}

		if ierr, ok := err.(*domain.IntakeError); ok {
			return nil, false, ierr
		}
		return nil, false, domain.ErrPersistenceFailure(err.Error(), "")
	}

	return nil, false, domain.ErrCollisionExhausted(maxNumberAttempts)
}

// sendOrderEmails dispatches the customer confirmation and the operator
// alert together and waits for both to settle. Reports whether any failed.
func (s *OrderService) sendOrderEmails(ctx context.Context, order *domain.Order) bool {
	customerMsg, err := mailer.CustomerConfirmation(order)
	if err != nil {
		log.Printf("Customer email render error: %v", err)
		return true
	}
	operatorMsg, err := mailer.OperatorAlert(order, s.operatorEmail)
	if err != nil {
		log.Printf("Operator email render error: %v", err)
		return true
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i, msg := range []mailer.Message{customerMsg, operatorMsg} {
		wg.Add(1)
		go func(i int, msg mailer.Message) {
			defer wg.Done()
			errs[i] = s.mailer.Send(ctx, msg)
		}(i, msg)
	}
	wg.Wait()

	failed := false
	for i, err := range errs {
		if err != nil {
			failed = true
			log.Printf("Email send failed: OrderNumber=%s, recipient=%d, err=%v", order.OrderNumber, i, err)
		}
	}
	return failed
}

func (s *OrderService) publishEvent(eventType events.OrderEventType, order *domain.Order, payload interface{}) {
	if s.publisher == nil {
		return
	}

	event := events.OrderEvent{
		ID:            uuid.New(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		EventType:     eventType,
		Service:       serviceName,
		CorrelationID: uuid.New(),
		Payload:       payload,
	}

	if err := s.publisher.PublishOrderEvent(event); err != nil {
		log.Printf("Event publish failed: %s, OrderNumber=%s, err=%v", eventType, order.OrderNumber, err)
	}
}

// GetOrderByNumber loads an order, reading through the cache when one is
// configured.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if s.cache != nil {
		key := s.cache.GenerateKey("order", orderNumber)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var order domain.Order
			if err := json.Unmarshal([]byte(cached), &order); err == nil {
				return &order, nil
			}
		}
	}

	order, err := s.store.GetOrderByNumber(orderNumber)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(order); err == nil {
			key := s.cache.GenerateKey("order", orderNumber)
			if err := s.cache.Set(ctx, key, string(data), orderCacheTTL); err != nil {
				log.Printf("Order cache set error: %v", err)
			}
		}
	}

	return order, nil
}
