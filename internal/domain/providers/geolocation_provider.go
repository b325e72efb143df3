package providers

import "context"

// Coordinates represents geographical coordinates.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DistanceUnit selects the Earth radius used for great-circle distances.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "km"
	UnitMiles      DistanceUnit = "mi"
	UnitFeet       DistanceUnit = "ft"
	UnitMeters     DistanceUnit = "m"
)

// GeolocationProvider resolves postal codes and computes distances.
type GeolocationProvider interface {
	// ResolveZip converts a postal code to coordinates. An unresolvable zip
	// yields an invalid-zip error, distinguished from a zero distance.
	ResolveZip(ctx context.Context, zip string) (*Coordinates, error)

	// Distance computes the great-circle distance between two points in the
	// given unit. No rounding is applied inside the formula.
	Distance(from, to Coordinates, unit DistanceUnit) float64
}
