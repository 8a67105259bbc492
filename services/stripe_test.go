package services

import (
	"bikerent-server/models"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripeServer answers every call with status and body and records the
// last request's path and form.
func stripeServer(t *testing.T, status int, body string) (*httptest.Server, *string, *url.Values) {
	t.Helper()

	var path string
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseForm(); err == nil {
			form = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	return server, &path, &form
}

func TestStripeProviderCreateCheckoutSession(t *testing.T) {
	server, path, form := stripeServer(t, http.StatusOK,
		`{"id": "cs_test_1", "object": "checkout.session", "url": "https://checkout.stripe.com/c/pay/cs_test_1"}`)
	provider := newStripeProvider("sk_test_123", server.URL)

	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ReservationID: "r1",
		ProductName:   "Aluguel de Bicicleta - Por Hora",
		Currency:      "brl",
		UnitAmount:    1500,
		SuccessURL:    "http://localhost:4000/api/reservations/r1/success",
		CancelURL:     "http://localhost:4000/api/reservations/r1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "/v1/checkout/sessions", *path)
	sent := *form
	assert.Equal(t, "payment", sent.Get("mode"))
	assert.Equal(t, "card", sent.Get("payment_method_types[0]"))
	assert.Equal(t, "1", sent.Get("line_items[0][quantity]"))
	assert.Equal(t, "brl", sent.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "1500", sent.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "Aluguel de Bicicleta - Por Hora", sent.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "r1", sent.Get("metadata[reservation_id]"))
	assert.Equal(t, "http://localhost:4000/api/reservations/r1/success", sent.Get("success_url"))
	assert.Equal(t, "http://localhost:4000/api/reservations/r1", sent.Get("cancel_url"))
}

func TestStripeProviderReportsStripeMessage(t *testing.T) {
	server, _, _ := stripeServer(t, http.StatusBadRequest,
		`{"error": {"type": "invalid_request_error", "message": "Invalid currency: xyz"}}`)
	provider := newStripeProvider("sk_test_123", server.URL)

	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ReservationID: "r1",
		ProductName:   "Aluguel de Bicicleta - Por Hora",
		Currency:      "xyz",
		UnitAmount:    1500,
		SuccessURL:    "http://localhost/success",
		CancelURL:     "http://localhost/cancel",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid currency: xyz", err.Error())

	gateway := NewCheckoutGateway(provider, "xyz")
	plan, err := LookupPlan("hourly")
	require.NoError(t, err)
	_, err = gateway.StartCheckout(context.Background(), &models.Reservation{ID: "r1", Price: plan.Price}, plan, "http://localhost")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "Invalid currency: xyz")
}
