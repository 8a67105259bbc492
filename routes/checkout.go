package routes

import (
	"bikerent-server/models"
	"bikerent-server/services"
	"bikerent-server/utils"
	"errors"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

// CreateCheckoutSession starts a hosted payment for the caller's
// reservation. With ?redirect=true the browser is sent straight to the
// provider, otherwise the URL is returned.
func (api *API) CreateCheckoutSession(ctx iris.Context) {
	if !api.Checkout.Enabled() {
		utils.CreateServiceError(services.ErrGatewayUnavailable, ctx)
		return
	}

	reservation, err := api.Ledger.Get(ctx.Request().Context(), ctx.Params().Get("id"), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	plan, err := services.LookupPlan(reservation.PlanKey)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	session, err := api.Checkout.StartCheckout(ctx.Request().Context(), reservation, plan, api.BaseURL)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	if session.ID != "" {
		if err := api.Ledger.AttachCheckout(ctx.Request().Context(), reservation.ID, session.ID); err != nil {
			golog.Warnf("reservation %s: %v", reservation.ID, err)
		}
	}

	if ctx.URLParam("redirect") == "true" {
		ctx.Redirect(session.URL, iris.StatusSeeOther)
		return
	}

	ctx.JSON(iris.Map{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// PaymentSuccess is where the provider sends the user back. Without a
// webhook secret the return itself marks the reservation paid; with one the
// webhook does, and this only reports the current state.
func (api *API) PaymentSuccess(ctx iris.Context) {
	reservation, err := api.Ledger.Get(ctx.Request().Context(), ctx.Params().Get("id"), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	if api.WebhookSecret == "" {
		reservation, err = api.Ledger.MarkPaid(ctx.Request().Context(), reservation.ID)
		if err != nil {
			utils.CreateServiceError(err, ctx)
			return
		}
	}

	view := api.viewReservation(ctx, *reservation)
	if reservation.Status != models.ReservationStatusPaid {
		ctx.StatusCode(iris.StatusAccepted)
		ctx.JSON(iris.Map{
			"reservation": view,
			"message":     "Payment is being confirmed",
		})
		return
	}

	qrCode, err := services.UnlockCodeBase64(reservation.BikeID, reservation.ID)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"reservation": view,
		"qrCode":      qrCode,
	})
}

// GetUnlockCode serves the unlock QR code of a paid reservation as a PNG.
func (api *API) GetUnlockCode(ctx iris.Context) {
	reservation, err := api.Ledger.Get(ctx.Request().Context(), ctx.Params().Get("id"), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}
	if reservation.Status != models.ReservationStatusPaid {
		utils.CreateError(iris.StatusConflict, "Reservation Error", "Reservation is not paid.", ctx)
		return
	}

	png, err := services.GenerateUnlockCode(reservation.BikeID, reservation.ID)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.ContentType("image/png")
	ctx.Write(png)
}

// StripeWebhook marks reservations paid when their checkout completes.
// Deliveries for reservations that no longer exist are acknowledged so the
// provider stops retrying them.
func (api *API) StripeWebhook(ctx iris.Context) {
	if api.WebhookSecret == "" {
		utils.CreateNotFound(ctx)
		return
	}

	payload, err := ctx.GetBody()
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unreadable body", ctx)
		return
	}

	reservationID, err := services.CompletedCheckoutReservation(payload, ctx.GetHeader("Stripe-Signature"), api.WebhookSecret)
	if err != nil {
		golog.Warnf("stripe webhook rejected: %v", err)
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid webhook", ctx)
		return
	}

	if reservationID != "" {
		_, err := api.Ledger.MarkPaid(ctx.Request().Context(), reservationID)
		if errors.Is(err, services.ErrNotFound) {
			golog.Warnf("stripe webhook for unknown reservation %s", reservationID)
		} else if err != nil {
			utils.CreateServiceError(err, ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"received": true})
}
