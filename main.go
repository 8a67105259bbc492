package main

import (
	"bikerent-server/routes"
	"bikerent-server/services"
	"bikerent-server/storage"
	"bikerent-server/utils"
	"context"
	"time"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

func main() {
	cfg := utils.LoadConfig()
	golog.SetLevel(cfg.LogLevel)

	store := openStore(cfg)
	tokenStore := openTokenStore(cfg)

	fleet, err := services.LoadFleet(cfg.FleetFile)
	if err != nil {
		golog.Fatalf("failed to load fleet: %v", err)
	}

	catalog := services.NewCatalogService(store)
	if err := catalog.Seed(context.Background(), fleet); err != nil {
		golog.Fatalf("%v", err)
	}

	var provider services.PaymentProvider
	if cfg.StripeSecretKey != "" {
		provider = services.NewStripeProvider(cfg.StripeSecretKey)
	}

	api := &routes.API{
		Accounts:      services.NewAccountService(store),
		Catalog:       catalog,
		Ledger:        services.NewReservationLedger(store),
		Checkout:      services.NewCheckoutGateway(provider, cfg.Currency),
		Tokens:        utils.NewTokens(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, tokenStore),
		BaseURL:       cfg.BaseURL,
		WebhookSecret: cfg.StripeWebhookSecret,
	}

	app := routes.NewApplication(api, cfg.FrontendOrigin)
	app.Logger().SetLevel(cfg.LogLevel)

	iris.RegisterOnInterrupt(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		app.Shutdown(ctx)
		if err := store.Close(); err != nil {
			golog.Errorf("closing store: %v", err)
		}
	})

	addr := "0.0.0.0:" + cfg.Port
	golog.Infof("server starting on %s", addr)

	if err := app.Listen(addr, iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		golog.Fatalf("server failed: %v", err)
	}
}

// openStore uses Postgres when DB_CONNECTION_STRING is set and keeps
// everything in memory otherwise.
func openStore(cfg utils.Config) storage.Store {
	if cfg.DatabaseURL == "" {
		golog.Warn("DB_CONNECTION_STRING not set, data will not survive a restart")
		return storage.NewMemoryStore()
	}

	store, err := storage.InitializeDB(cfg.DatabaseURL)
	if err != nil {
		golog.Fatalf("%v", err)
	}
	return store
}

func openTokenStore(cfg utils.Config) storage.TokenStore {
	if cfg.RedisURL == "" {
		return storage.NewMemoryTokenStore()
	}

	tokenStore, err := storage.InitializeRedis(cfg.RedisURL)
	if err != nil {
		golog.Fatalf("%v", err)
	}
	return tokenStore
}
