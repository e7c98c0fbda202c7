package handlers

import (
	"time"

	"github.com/mindfulpages/order-intake/internal/domain"
)

type OrderResponse struct {
	OrderNumber   string              `json:"orderNumber"`
	OrderDate     time.Time           `json:"orderDate"`
	Customer      CustomerResponse    `json:"customer"`
	Shipping      ShippingResponse    `json:"shipping"`
	Items         []OrderItemResponse `json:"items"`
	PaymentMethod string              `json:"paymentMethod"`
	Notes         string              `json:"notes,omitempty"`
	Subtotal      float64             `json:"subtotal"`
	ShippingCost  float64             `json:"shippingCost"`
	Tax           float64             `json:"tax"`
	TotalAmount   float64             `json:"totalAmount"`
	Status        string              `json:"status"`
}

type CustomerResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type ShippingResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItemResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Type     string  `json:"type"`
}

func mapOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:       item.ItemID,
			Title:    item.Title,
			Price:    item.Price,
			Quantity: item.Quantity,
			Type:     string(item.Type),
		}
	}

	return OrderResponse{
		OrderNumber: order.OrderNumber,
		OrderDate:   order.OrderDate,
		Customer: CustomerResponse{
			FirstName: order.Customer.FirstName,
			LastName:  order.Customer.LastName,
			Email:     order.Customer.Email,
			Phone:     order.Customer.Phone,
		},
		Shipping: ShippingResponse{
			Address:    order.Shipping.Address,
			City:       order.Shipping.City,
			PostalCode: order.Shipping.PostalCode,
			Country:    order.Shipping.Country,
		},
		Items:         items,
		PaymentMethod: string(order.PaymentMethod),
		Notes:         order.Notes,
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		Tax:           order.Tax,
		TotalAmount:   order.TotalAmount,
		Status:        string(order.Status),
	}
}
