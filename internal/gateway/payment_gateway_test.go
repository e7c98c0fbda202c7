package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeGateway_GetPaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pi_123", "status": "succeeded", "amount": 3800, "currency": "bgn"}`))
	}))
	defer server.Close()

	gw := NewStripeGateway("sk_test_key", server.URL, time.Second*5)
	intent, err := gw.GetPaymentIntent(context.Background(), "pi_123")

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, PaymentIntentSucceeded, intent.Status)
	assert.Equal(t, int64(3800), intent.Amount)
}

func TestStripeGateway_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	gw := NewStripeGateway("sk_test_key", server.URL, time.Second*5)
	_, err := gw.GetPaymentIntent(context.Background(), "pi_missing")

	assert.Error(t, err)
}

func TestStripeGateway_Unreachable(t *testing.T) {
	gw := NewStripeGateway("sk_test_key", "http://127.0.0.1:1", time.Millisecond*200)
	_, err := gw.GetPaymentIntent(context.Background(), "pi_123")

	assert.Error(t, err)
}
