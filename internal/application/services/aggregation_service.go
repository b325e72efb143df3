package services

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	"github.com/slotscout/slotscout/internal/infrastructure/observability"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

const (
	// aggregateCacheKey holds the JSON of the latest aggregation pass.
	aggregateCacheKey = "aggregate:latest"
	aggregateCacheTTL = 600
)

// AggregationService runs one aggregation pass over the scheduler: fan out
// per city, merge, dedupe, annotate distances, filter and rank. Each pass
// builds fresh Location values; nothing survives between passes.
type AggregationService struct {
	scheduler providers.SchedulerProvider
	geo       providers.GeolocationProvider
	snapshots providers.SnapshotStore
	cache     providers.CacheProvider

	maxConcurrentFetches int
}

// NewAggregationService creates a new aggregation service. snapshots and
// cache may be nil; persistence of pass results is then skipped.
func NewAggregationService(
	scheduler providers.SchedulerProvider,
	geo providers.GeolocationProvider,
	snapshots providers.SnapshotStore,
	cache providers.CacheProvider,
	maxConcurrentFetches int,
) *AggregationService {
	if maxConcurrentFetches <= 0 {
		maxConcurrentFetches = 10
	}
	return &AggregationService{
		scheduler:            scheduler,
		geo:                  geo,
		snapshots:            snapshots,
		cache:                cache,
		maxConcurrentFetches: maxConcurrentFetches,
	}
}

// Aggregate runs one pass for the given criteria and returns the ranked
// locations. A city whose fetch fails is skipped with a warning unless
// criteria.StrictCities is set, in which case the first failure aborts the
// whole pass.
func (s *AggregationService) Aggregate(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Location, error) {
	logger := observability.GetLogger()

	cities := criteria.Cities
	if len(cities) == 0 {
		all, err := s.scheduler.ListCities(ctx)
		if err != nil {
			return nil, err
		}
		cities = make([]string, len(all))
		for i, c := range all {
			cities[i] = c.Name
		}
	}

	origin := s.resolveOrigin(ctx, criteria.OriginZip)

	// Fan out one fetch per city. Results land in index-addressed slots so
	// the merge below preserves the caller's city order regardless of
	// completion order.
	results := make([][]entities.Location, len(cities))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrentFetches)

	for i, city := range cities {
		i, city := i, city
		group.Go(func() error {
			locations, err := s.scheduler.FindNearestLocations(groupCtx, city, criteria.ServiceTypeID)
			if err != nil {
				if criteria.StrictCities {
					return err
				}
				logger.Warn().Err(err).Str("city", city).Msg("skipping city after fetch failure")
				return nil
			}
			results[i] = locations
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Each stage returns a fresh slice; nothing upstream is mutated.
	merged := s.merge(results)
	annotated := s.annotateDistances(merged, origin)
	filtered := s.filter(annotated, criteria)
	ranked := s.rank(filtered)

	s.persist(ctx, ranked)
	return ranked, nil
}

// MatchSlots joins each location with its earliest open slot. Locations
// without an open slot, and locations whose slot fetch fails, are dropped.
// Fetches run under the same concurrency bound as the city fan-out, with
// per-location result slots so match order follows location rank.
func (s *AggregationService) MatchSlots(ctx context.Context, locations []entities.Location, serviceTypeID int) []entities.LocationSlot {
	logger := observability.GetLogger()

	slots := make([]*entities.SlotDetail, len(locations))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrentFetches)
	for i, loc := range locations {
		i, loc := i, loc
		group.Go(func() error {
			slot, err := s.scheduler.NextAppointment(groupCtx, loc.ID, serviceTypeID)
			if err != nil {
				if !apperrors.IsType(err, apperrors.ErrorTypeNoSlot) {
					logger.Warn().Err(err).Int("location_id", loc.ID).Msg("skipping location after slot fetch failure")
				}
				return nil
			}
			slots[i] = slot
			return nil
		})
	}
	_ = group.Wait()

	matches := make([]entities.LocationSlot, 0, len(locations))
	for i, slot := range slots {
		if slot != nil {
			matches = append(matches, entities.LocationSlot{Location: locations[i], Slot: *slot})
		}
	}
	return matches
}

// resolveOrigin resolves the origin zip once per pass. An empty or
// unresolvable zip returns nil, which leaves every distance undefined.
func (s *AggregationService) resolveOrigin(ctx context.Context, zip string) *providers.Coordinates {
	if zip == "" || s.geo == nil {
		return nil
	}
	coords, err := s.geo.ResolveZip(ctx, zip)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("zip", zip).
			Msg("origin zip did not resolve; distances left undefined")
		return nil
	}
	return coords
}

// merge flattens per-city results in city order, keeping the first
// occurrence of each location ID.
func (s *AggregationService) merge(results [][]entities.Location) []entities.Location {
	seen := make(map[int]bool)
	var merged []entities.Location
	for _, cityLocations := range results {
		for _, loc := range cityLocations {
			if seen[loc.ID] {
				continue
			}
			seen[loc.ID] = true
			merged = append(merged, loc)
		}
	}
	return merged
}

func (s *AggregationService) annotateDistances(locations []entities.Location, origin *providers.Coordinates) []entities.Location {
	annotated := make([]entities.Location, len(locations))
	copy(annotated, locations)
	if origin == nil {
		return annotated
	}
	for i := range annotated {
		d := s.geo.Distance(*origin, providers.Coordinates{
			Latitude:  annotated[i].Latitude,
			Longitude: annotated[i].Longitude,
		}, providers.UnitMiles)
		d = math.Round(d*100) / 100
		annotated[i].DistanceMiles = &d
	}
	return annotated
}

// filter applies the distance cap and the date window. The distance cap
// only applies to locations with a defined distance; an unresolved origin
// disables it entirely.
func (s *AggregationService) filter(locations []entities.Location, criteria entities.SearchCriteria) []entities.Location {
	filtered := make([]entities.Location, 0, len(locations))
	for _, loc := range locations {
		if criteria.MaxDistanceMiles > 0 && loc.DistanceMiles != nil && *loc.DistanceMiles > criteria.MaxDistanceMiles {
			continue
		}
		if !criteria.MinDate.IsZero() && loc.NextAvailable.Before(criteria.MinDate) {
			continue
		}
		if !criteria.MaxDate.IsZero() && loc.NextAvailable.After(criteria.MaxDate) {
			continue
		}
		filtered = append(filtered, loc)
	}
	return filtered
}

// rank orders by earliest next-available date, breaking ties by distance.
// Locations without a defined distance sort after those with one.
func (s *AggregationService) rank(locations []entities.Location) []entities.Location {
	ranked := make([]entities.Location, len(locations))
	copy(ranked, locations)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if !a.NextAvailable.Equal(b.NextAvailable) {
			return a.NextAvailable.Before(b.NextAvailable)
		}
		switch {
		case a.DistanceMiles == nil:
			return false
		case b.DistanceMiles == nil:
			return true
		default:
			return *a.DistanceMiles < *b.DistanceMiles
		}
	})
	return ranked
}

// persist writes the pass result to the snapshot store and cache. Both are
// advisory; failures are logged and never fail the pass.
func (s *AggregationService) persist(ctx context.Context, locations []entities.Location) {
	logger := observability.GetLogger()

	if s.snapshots != nil {
		if err := s.snapshots.Write(ctx, locations); err != nil {
			logger.Warn().Err(err).Msg("failed to write location snapshot")
		}
	}
	if s.cache != nil {
		payload, err := json.Marshal(locations)
		if err == nil {
			err = s.cache.Set(ctx, aggregateCacheKey, payload, aggregateCacheTTL)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("failed to cache aggregation result")
		}
	}
}
