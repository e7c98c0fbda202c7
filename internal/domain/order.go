package domain

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodOther PaymentMethod = "other"
)

type ItemType string

const (
	ItemTypeBook    ItemType = "book"
	ItemTypeService ItemType = "service"
)

// Order is one checkout transaction. OrderNumber is the 6-digit display
// identifier shown to the customer; ID is the store's row identifier.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	OrderDate     time.Time       `json:"order_date"`
	Customer      Customer        `json:"customer"`
	Shipping      ShippingAddress `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	Subtotal      float64         `json:"subtotal"`
	ShippingCost  float64         `json:"shipping_cost"`
	Tax           float64         `json:"tax"`
	TotalAmount   float64         `json:"total_amount"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderItem     `json:"items"`
}

type OrderItem struct {
	OrderID  uuid.UUID `json:"order_id"`
	ItemID   string    `json:"item_id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Type     ItemType  `json:"type"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewOrder assembles an Order from a validated checkout request. Status is
// derived from the payment method: card orders go straight to processing,
// everything else starts pending.
func NewOrder(req CheckoutRequest, orderNumber string, orderDate time.Time) *Order {
	orderID := uuid.New()

	status := OrderStatusPending
	if req.PaymentMethod == PaymentMethodCard {
		status = OrderStatusProcessing
	}

	items := make([]OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = OrderItem{
			OrderID:  orderID,
			ItemID:   item.ID,
			Title:    item.Title,
			Price:    item.Price,
			Quantity: item.Quantity,
			Type:     item.Type,
		}
	}

	return &Order{
		ID:          orderID,
		OrderNumber: orderNumber,
		OrderDate:   orderDate,
		Customer: Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		Shipping: ShippingAddress{
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		},
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		Tax:           req.Tax,
		TotalAmount:   req.TotalAmount,
		Status:        status,
		Items:         items,
	}
}

// NewOrderNumber draws a 6-digit display number in [100000, 999999].
// Uniqueness is enforced by the store, not here; callers retry on collision.
func NewOrderNumber() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
