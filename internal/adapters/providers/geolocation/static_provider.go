package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

// StaticProvider resolves a fixed table of zip codes. Used in tests and in
// offline development; any zip outside the table is invalid.
type StaticProvider struct {
	table map[string]providers.Coordinates
}

// NewStaticProvider creates a provider seeded with a handful of Texas zips.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		table: map[string]providers.Coordinates{
			"78701": {Latitude: 30.2672, Longitude: -97.7431}, // Austin downtown
			"78741": {Latitude: 30.2300, Longitude: -97.7147},
			"78752": {Latitude: 30.3313, Longitude: -97.7022},
			"75201": {Latitude: 32.7876, Longitude: -96.7994}, // Dallas
			"77002": {Latitude: 29.7589, Longitude: -95.3677}, // Houston
			"78410": {Latitude: 27.8339, Longitude: -97.6114}, // Corpus Christi
		},
	}
}

// NewStaticProviderWithTable creates a provider over the given table.
func NewStaticProviderWithTable(table map[string]providers.Coordinates) *StaticProvider {
	return &StaticProvider{table: table}
}

// ResolveZip looks the zip up in the static table.
func (s *StaticProvider) ResolveZip(ctx context.Context, zip string) (*providers.Coordinates, error) {
	coords, ok := s.table[strings.TrimSpace(zip)]
	if !ok {
		return nil, apperrors.NewInvalidZipError(fmt.Sprintf("zip code not in static table: %q", zip))
	}
	return &coords, nil
}

// Distance computes the great-circle distance between two points.
func (s *StaticProvider) Distance(from, to providers.Coordinates, unit providers.DistanceUnit) float64 {
	return Haversine(from, to, unit)
}

var _ providers.GeolocationProvider = (*StaticProvider)(nil)
