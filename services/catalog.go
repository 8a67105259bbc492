package services

import (
	"bikerent-server/models"
	"bikerent-server/storage"
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kataras/golog"
	"golang.org/x/exp/slices"
)

// CatalogService exposes the bike fleet for browsing. It never changes a
// bike's availability; that belongs to the ReservationLedger.
type CatalogService struct {
	store storage.Store
}

func NewCatalogService(store storage.Store) *CatalogService {
	return &CatalogService{store: store}
}

type BikeFilter struct {
	Type          string
	AvailableOnly bool
}

type NearbyBike struct {
	models.Bike
	DistanceKm float64 `json:"distanceKm"`
}

func (s *CatalogService) List(ctx context.Context, filter BikeFilter) ([]models.Bike, error) {
	var bikes []models.Bike
	err := s.store.View(ctx, func(tx storage.Tx) error {
		all, err := tx.Bikes()
		if err != nil {
			return err
		}

		for _, bike := range all {
			if filter.Type != "" && bike.Type != filter.Type {
				continue
			}
			if filter.AvailableOnly && !bike.Available {
				continue
			}
			bikes = append(bikes, bike)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bikes: %w", err)
	}

	slices.SortFunc(bikes, func(a, b models.Bike) int {
		return compareIDs(a.ID, b.ID)
	})
	return bikes, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Bike, error) {
	var bike *models.Bike
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		bike, err = tx.Bike(id)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("bike %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bike: %w", err)
	}

	return bike, nil
}

// Near returns the bikes within radiusKm of the point, nearest first.
func (s *CatalogService) Near(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyBike, error) {
	bikes, err := s.List(ctx, BikeFilter{})
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyBike, 0, len(bikes))
	for _, bike := range bikes {
		d := CalculateDistance(lat, lng, bike.Lat, bike.Lng)
		if d <= radiusKm {
			nearby = append(nearby, NearbyBike{Bike: bike, DistanceKm: d})
		}
	}

	slices.SortStableFunc(nearby, func(a, b NearbyBike) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return nearby, nil
}

// Seed inserts the fleet, keeping any bike already present with the same id.
func (s *CatalogService) Seed(ctx context.Context, bikes []models.Bike) error {
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		for i := range bikes {
			if err := tx.InsertBikeIfMissing(&bikes[i]); err != nil {
				return fmt.Errorf("bike %s: %w", bikes[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed fleet: %w", err)
	}

	golog.Infof("catalog seeded with %d bikes", len(bikes))
	return nil
}

// compareIDs orders numeric ids numerically ("2" < "10") and falls back to
// plain string order otherwise.
func compareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) && len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}

	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
