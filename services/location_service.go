package services

import "math"

// Named spots in São Paulo the map can centre on.
var SaoPauloLocations = map[string]Location{
	"se": {
		Name:     "Praça da Sé",
		Lat:      -23.550520,
		Lng:      -46.633308,
		Radius:   1.5,
		Priority: 1,
	},
	"paulista": {
		Name:     "Avenida Paulista",
		Lat:      -23.561414,
		Lng:      -46.655881,
		Radius:   2.0,
		Priority: 2,
	},
	"ibirapuera": {
		Name:     "Parque Ibirapuera",
		Lat:      -23.587416,
		Lng:      -46.657634,
		Radius:   2.5,
		Priority: 3,
	},
	"pinheiros": {
		Name:     "Largo da Batata",
		Lat:      -23.566978,
		Lng:      -46.693138,
		Radius:   1.5,
		Priority: 4,
	},
}

type Location struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Radius   float64 `json:"radius"` // in kilometers
	Priority int     `json:"priority"`
}

// CalculateDistance returns the great-circle distance in kilometers (haversine).
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// GetLocationKeysByPriority lists location keys in display order.
func GetLocationKeysByPriority() []string {
	var keys []string
	priorityMap := make(map[int]string)

	for key, location := range SaoPauloLocations {
		priorityMap[location.Priority] = key
	}

	for i := 1; i <= len(SaoPauloLocations); i++ {
		if key, exists := priorityMap[i]; exists {
			keys = append(keys, key)
		}
	}

	return keys
}

func GetLocationInfo(locationKey string) (Location, bool) {
	location, exists := SaoPauloLocations[locationKey]
	return location, exists
}
