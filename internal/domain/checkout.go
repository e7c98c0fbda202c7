package domain

import "regexp"

// emailPattern is the basic localpart@domain.tld check the checkout form uses.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CheckoutRequest mirrors the checkout form payload.
type CheckoutRequest struct {
	Customer        *CustomerRequest      `json:"customer"`
	Shipping        *ShippingRequest      `json:"shipping"`
	Items           []CheckoutItemRequest `json:"items"`
	PaymentMethod   PaymentMethod         `json:"paymentMethod"`
	Notes           string                `json:"notes"`
	Subtotal        float64               `json:"subtotal"`
	ShippingCost    float64               `json:"shippingCost"`
	Tax             float64               `json:"tax"`
	TotalAmount     float64               `json:"totalAmount"`
	PaymentIntentID string                `json:"paymentIntentId"`
}

type CustomerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CheckoutItemRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Type     ItemType `json:"type"`
}

// Validate checks the request in the order the checkout API documents;
// the first failing check wins.
func (r *CheckoutRequest) Validate() *IntakeError {
	if r.Customer == nil || r.Shipping == nil || len(r.Items) == 0 {
		return ErrMissingOrderInformation()
	}
	if r.Customer.FirstName == "" || r.Customer.LastName == "" || r.Customer.Email == "" {
		return ErrMissingCustomerInformation()
	}
	if !emailPattern.MatchString(r.Customer.Email) {
		return ErrInvalidEmailFormat()
	}
	return nil
}
