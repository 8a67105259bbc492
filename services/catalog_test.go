package services

import (
	"bikerent-server/storage"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogListAndFilter(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	catalog := NewCatalogService(store)
	require.NoError(t, catalog.Seed(ctx, DefaultFleet()))

	bikes, err := catalog.List(ctx, BikeFilter{})
	require.NoError(t, err)
	require.Len(t, bikes, 4)
	assert.Equal(t, "1", bikes[0].ID)
	assert.Equal(t, "4", bikes[3].ID)

	bikes, err = catalog.List(ctx, BikeFilter{Type: "mountain"})
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, "2", bikes[0].ID)

	_, err = NewReservationLedger(store).Create(ctx, "u1", "1", "hourly")
	require.NoError(t, err)

	bikes, err = catalog.List(ctx, BikeFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, bikes, 3)
	for _, bike := range bikes {
		assert.NotEqual(t, "1", bike.ID)
	}

	_, err = catalog.Get(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogSeedKeepsExistingBikes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	catalog := NewCatalogService(store)
	require.NoError(t, catalog.Seed(ctx, DefaultFleet()))

	_, err := NewReservationLedger(store).Create(ctx, "u1", "2", "hourly")
	require.NoError(t, err)

	require.NoError(t, catalog.Seed(ctx, DefaultFleet()))

	bike, err := catalog.Get(ctx, "2")
	require.NoError(t, err)
	assert.False(t, bike.Available)
}

func TestCatalogNear(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogService(storage.NewMemoryStore())
	require.NoError(t, catalog.Seed(ctx, DefaultFleet()))

	se, ok := GetLocationInfo("se")
	require.True(t, ok)

	nearby, err := catalog.Near(ctx, se.Lat, se.Lng, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, nearby)
	assert.Equal(t, "1", nearby[0].ID)
	for i := 1; i < len(nearby); i++ {
		assert.LessOrEqual(t, nearby[i-1].DistanceKm, nearby[i].DistanceKm)
	}

	far, err := catalog.Near(ctx, 0, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, far)
}

func TestCompareIDs(t *testing.T) {
	assert.Equal(t, -1, compareIDs("2", "10"))
	assert.Equal(t, 1, compareIDs("10", "9"))
	assert.Equal(t, 0, compareIDs("7", "7"))
	assert.Equal(t, -1, compareIDs("a", "b"))
}

func TestCalculateDistance(t *testing.T) {
	assert.InDelta(t, 0, CalculateDistance(-23.55, -46.63, -23.55, -46.63), 1e-9)
	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, CalculateDistance(0, 0, 1, 0), 0.1)
	assert.Equal(t, []string{"se", "paulista", "ibirapuera", "pinheiros"}, GetLocationKeysByPriority())
}

func TestParseFleet(t *testing.T) {
	list := []byte(`
- id: "10"
  model: Cargo
  type: urbana
  wheel_size: "24"
  lat: -23.5
  lng: -46.6
  available: true
  battery: 70
`)
	bikes, err := ParseFleet(list)
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, "Cargo", bikes[0].Model)
	assert.Equal(t, "24", bikes[0].WheelSize)
	assert.True(t, bikes[0].Available)

	wrapped := []byte(`{"bikes": [{"id": "a", "available": false}, {"id": "b"}]}`)
	bikes, err = ParseFleet(wrapped)
	require.NoError(t, err)
	require.Len(t, bikes, 2)
	assert.False(t, bikes[0].Available)
	assert.True(t, bikes[1].Available, "omitted availability means rentable")

	bikes, err = ParseFleet([]byte("- id: c\n  battery: 10\n"))
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.True(t, bikes[0].Available)
	assert.Equal(t, 10, bikes[0].Battery)

	_, err = ParseFleet([]byte(`[{"id": "a"}, {"id": "a"}]`))
	assert.Error(t, err)

	_, err = ParseFleet([]byte(`[{"model": "no id"}]`))
	assert.Error(t, err)
}

func TestLoadFleet(t *testing.T) {
	bikes, err := LoadFleet("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFleet(), bikes)

	bikes, err = LoadFleet(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFleet(), bikes)

	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bikes:\n  - id: x\n    available: true\n"), 0o600))
	bikes, err = LoadFleet(path)
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, "x", bikes[0].ID)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bikes: [1, 2"), 0o600))
	_, err = LoadFleet(bad)
	assert.Error(t, err)
}
