package main

import (
	"bikerent-server/services"
	"bikerent-server/storage"
	"bikerent-server/utils"
	"context"
	"flag"

	"github.com/kataras/golog"
)

// Seeds the configured database with the fleet file (or the built-in
// fleet). Bikes already present keep their current state.
func main() {
	fleetFile := flag.String("fleet", "", "YAML fleet file, defaults to FLEET_FILE")
	flag.Parse()

	cfg := utils.LoadConfig()
	if *fleetFile == "" {
		*fleetFile = cfg.FleetFile
	}

	store, err := storage.InitializeDB(cfg.DatabaseURL)
	if err != nil {
		golog.Fatalf("%v", err)
	}
	defer store.Close()

	fleet, err := services.LoadFleet(*fleetFile)
	if err != nil {
		golog.Fatalf("error loading fleet: %v", err)
	}

	if err := services.NewCatalogService(store).Seed(context.Background(), fleet); err != nil {
		golog.Fatalf("%v", err)
	}

	golog.Info("fleet seeding completed successfully")
}
