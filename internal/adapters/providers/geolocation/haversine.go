package geolocation

import (
	"math"

	"github.com/slotscout/slotscout/internal/domain/providers"
)

const (
	earthRadiusKm = 6371.0
	earthRadiusMi = 3959.0
)

// Haversine returns the great-circle distance between two points in the
// given unit. Unknown units fall back to miles. No rounding happens here;
// callers round at the point of storage.
func Haversine(from, to providers.Coordinates, unit providers.DistanceUnit) float64 {
	var radius float64
	switch unit {
	case providers.UnitKilometers:
		radius = earthRadiusKm
	case providers.UnitMeters:
		radius = earthRadiusKm * 1000
	case providers.UnitFeet:
		radius = earthRadiusMi * 5280
	default:
		radius = earthRadiusMi
	}

	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	deltaLat := toRadians(to.Latitude - from.Latitude)
	deltaLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
