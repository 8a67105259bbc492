package services

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// CompletedCheckoutReservation verifies a Stripe webhook delivery and
// returns the reservation id carried by a completed checkout session. Other
// event types yield an empty id and no error. Events rendered with an API
// version other than the library's pinned one are accepted, since only the
// session metadata is read.
func CompletedCheckoutReservation(payload []byte, signature, secret string) (string, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", fmt.Errorf("invalid webhook: %w", err)
	}

	if event.Type != eventCheckoutCompleted {
		return "", nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", fmt.Errorf("invalid checkout session payload: %w", err)
	}

	return session.Metadata["reservation_id"], nil
}
