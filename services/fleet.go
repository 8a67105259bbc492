package services

import (
	"bikerent-server/models"
	"errors"
	"fmt"
	"os"

	"github.com/kataras/golog"
	"gopkg.in/yaml.v3"
)

// DefaultFleet is the built-in set of bikes used when no fleet file is
// configured. Every bike starts available since no reservation holds it yet.
func DefaultFleet() []models.Bike {
	return []models.Bike{
		{ID: "1", Model: "Urban Pro", Type: "urbana", WheelSize: "26", Lat: -23.550520, Lng: -46.633308, Available: true, Battery: 85, Image: "bike1.jpg"},
		{ID: "2", Model: "Mountain Explorer", Type: "mountain", WheelSize: "29", Lat: -23.551520, Lng: -46.634308, Available: true, Battery: 92, Image: "bike2.jpg"},
		{ID: "3", Model: "Speed Lightning", Type: "speed", WheelSize: "28", Lat: -23.552520, Lng: -46.635308, Available: true, Battery: 45, Image: "bike3.jpg"},
		{ID: "4", Model: "Electric City", Type: "eletrica", WheelSize: "26", Lat: -23.553520, Lng: -46.636308, Available: true, Battery: 100, Image: "bike4.jpg"},
	}
}

// fleetEntry is a bike as written in a fleet file, where an omitted
// "available" means the bike can be rented.
type fleetEntry models.Bike

func (e *fleetEntry) UnmarshalYAML(value *yaml.Node) error {
	bike := models.Bike{Available: true}
	if err := value.Decode(&bike); err != nil {
		return err
	}

	*e = fleetEntry(bike)
	return nil
}

type fleetFile struct {
	Bikes []fleetEntry `yaml:"bikes"`
}

// ParseFleet reads a fleet document. Both a bare list of bikes and a
// mapping with a "bikes" key are accepted; JSON parses as YAML.
func ParseFleet(data []byte) ([]models.Bike, error) {
	var entries []fleetEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		var wrapped fleetFile
		if wrappedErr := yaml.Unmarshal(data, &wrapped); wrappedErr != nil {
			return nil, fmt.Errorf("invalid fleet document: %w", err)
		}
		entries = wrapped.Bikes
	}

	bikes := make([]models.Bike, len(entries))
	for i := range entries {
		bikes[i] = models.Bike(entries[i])
	}

	seen := make(map[string]bool, len(bikes))
	for i, bike := range bikes {
		if bike.ID == "" {
			return nil, fmt.Errorf("fleet entry %d has no id", i)
		}
		if seen[bike.ID] {
			return nil, fmt.Errorf("duplicate bike id %q", bike.ID)
		}
		seen[bike.ID] = true
	}

	return bikes, nil
}

// LoadFleet reads the fleet file at path. A missing path, a missing file or
// an empty fleet falls back to DefaultFleet; a malformed file is an error.
func LoadFleet(path string) ([]models.Bike, error) {
	if path == "" {
		return DefaultFleet(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		golog.Warnf("fleet file %s not found, using the built-in fleet", path)
		return DefaultFleet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fleet file: %w", err)
	}

	bikes, err := ParseFleet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(bikes) == 0 {
		golog.Warnf("fleet file %s is empty, using the built-in fleet", path)
		return DefaultFleet(), nil
	}

	return bikes, nil
}
