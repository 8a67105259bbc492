package routes

import (
	"bikerent-server/services"
	"bikerent-server/utils"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/rs/cors"
)

// API carries the services every handler needs.
type API struct {
	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Ledger   *services.ReservationLedger
	Checkout *services.CheckoutGateway
	Tokens   *utils.Tokens

	// BaseURL is where the payment provider sends the user back to.
	BaseURL string
	// WebhookSecret enables /api/webhooks/stripe; when set, payment is
	// confirmed by the webhook instead of the success redirect.
	WebhookSecret string
}

// NewApplication builds the iris app with middleware and every route.
func NewApplication(api *API, frontendOrigin string) *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	app.UseRouter(recover.New())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: frontendOrigin != "*",
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
	app.WrapRouter(func(w http.ResponseWriter, r *http.Request, router http.HandlerFunc) {
		c.ServeHTTP(w, r, router)
	})

	app.Use(iris.Compression)

	Mount(app, api)
	return app
}

// Mount registers every route of the service on app.
func Mount(app *iris.Application, api *API) {
	accessTokenVerifierMiddleware := api.Tokens.AccessMiddleware()
	refreshTokenVerifierMiddleware := api.Tokens.RefreshMiddleware()
	authenticated := []iris.Handler{accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware}

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", api.Register)
		user.Post("/login", api.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, api.Tokens.RefreshToken)
		user.Post("/logout", append(authenticated, api.Logout)...)
		user.Get("/me", append(authenticated, api.GetMe)...)
	}

	bikes := app.Party("/api/bikes")
	{
		bikes.Get("/", api.GetBikes)
		bikes.Get("/near", api.GetBikesNear)
		bikes.Get("/{id}", append(authenticated, api.GetBike)...)
		bikes.Post("/{id}/reserve", append(authenticated, api.CreateReservation)...)
	}

	app.Get("/api/plans", GetPlans)
	app.Get("/api/locations", GetLocations)

	reservations := app.Party("/api/reservations", authenticated...)
	{
		reservations.Get("/", api.GetUserReservations)
		reservations.Get("/{id}", api.GetReservation)
		reservations.Delete("/{id}", api.CancelReservation)
		reservations.Post("/{id}/checkout", api.CreateCheckoutSession)
		reservations.Get("/{id}/success", api.PaymentSuccess)
		reservations.Get("/{id}/unlock.png", api.GetUnlockCode)
	}

	app.Post("/api/webhooks/stripe", api.StripeWebhook)
}
