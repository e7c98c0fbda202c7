package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const PaymentIntentSucceeded = "succeeded"

// PaymentGateway is the external payment provider seen by order intake.
// Intake only ever queries an intent's terminal status; charging happens
// on the storefront before checkout submission.
type PaymentGateway interface {
	GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}

type PaymentIntent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// StripeGateway queries the Stripe payment-intents API with the secret key.
type StripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeGateway(secretKey, baseURL string, timeout time.Duration) *StripeGateway {
	return &StripeGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", g.baseURL, intentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("payment intent request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider returned status %d for intent %s", resp.StatusCode, intentID)
	}

	var intent PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("payment intent decode error: %v", err)
	}

	return &intent, nil
}

// MockPaymentGateway returns a fixed status for every intent; used in tests
// and in deployments without a provider key.
type MockPaymentGateway struct {
	Status string
	Err    error
}

func NewMockPaymentGateway(status string) *MockPaymentGateway {
	return &MockPaymentGateway{Status: status}
}

func (m *MockPaymentGateway) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &PaymentIntent{ID: intentID, Status: m.Status}, nil
}
