package services

import (
	"bikerent-server/models"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kataras/golog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const checkoutTimeout = 15 * time.Second

// CheckoutRequest is the single line item sent to the payment provider.
type CheckoutRequest struct {
	ReservationID string
	ProductName   string
	Currency      string
	UnitAmount    int64 // minor units
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentProvider creates hosted checkout sessions.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutGateway turns a reservation into a provider redirect URL. A nil
// provider means payments are not configured.
type CheckoutGateway struct {
	provider PaymentProvider
	currency string
}

func NewCheckoutGateway(provider PaymentProvider, currency string) *CheckoutGateway {
	if currency == "" {
		currency = "brl"
	}

	return &CheckoutGateway{provider: provider, currency: strings.ToLower(currency)}
}

func (g *CheckoutGateway) Enabled() bool {
	return g.provider != nil
}

// StartCheckout requests a hosted checkout session for the reservation and
// returns the URL to redirect the user to. It is not retried.
func (g *CheckoutGateway) StartCheckout(ctx context.Context, reservation *models.Reservation, plan models.Plan, returnBaseURL string) (*CheckoutSession, error) {
	if g.provider == nil {
		return nil, ErrGatewayUnavailable
	}

	base := strings.TrimRight(returnBaseURL, "/")
	req := CheckoutRequest{
		ReservationID: reservation.ID,
		ProductName:   "Aluguel de Bicicleta - " + plan.Name,
		Currency:      g.currency,
		UnitAmount:    UnitAmount(reservation.Price),
		SuccessURL:    fmt.Sprintf("%s/api/reservations/%s/success", base, reservation.ID),
		CancelURL:     fmt.Sprintf("%s/api/reservations/%s", base, reservation.ID),
	}

	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	session, err := g.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		golog.Errorf("checkout for reservation %s failed: %v", reservation.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if session == nil || session.URL == "" {
		return nil, fmt.Errorf("%w: checkout session has no url", ErrGateway)
	}

	return session, nil
}

// UnitAmount converts a price to minor currency units.
func UnitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// StripeProvider talks to Stripe Checkout. Network retries are disabled.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return newStripeProvider(secretKey, "")
}

// newStripeProvider points the API backend at apiURL; empty keeps Stripe's.
func newStripeProvider(secretKey, apiURL string) *StripeProvider {
	httpClient := &http.Client{Timeout: checkoutTimeout}

	// GetBackendWithConfig fills in the backend URL, so each backend gets
	// its own config.
	backendConfig := func(url string) *stripe.BackendConfig {
		config := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
		}
		if url != "" {
			config.URL = stripe.String(url)
		}
		return config
	}

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig(apiURL)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig("")),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig("")),
	})

	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("reservation_id", req.ReservationID)

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, errors.New(stripeErr.Msg)
		}
		return nil, err
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
