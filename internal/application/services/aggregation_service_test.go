package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slotscout/slotscout/internal/application/services"
	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

var (
	day1 = time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	day3 = time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC)
)

func location(id int, name string, next time.Time) entities.Location {
	return entities.Location{ID: id, Name: name, NextAvailable: next}
}

func TestAggregationService_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("deduplicates locations shared between cities", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		shared := location(10, "Pflugerville", day2)
		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{location(1, "Austin South", day1), shared}, nil)
		scheduler.On("FindNearestLocations", mock.Anything, "Round Rock", 71).
			Return([]entities.Location{shared, location(2, "Round Rock", day3)}, nil)

		service := services.NewAggregationService(scheduler, nil, nil, nil, 2)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:        []string{"Austin", "Round Rock"},
			ServiceTypeID: 71,
		})

		require.NoError(t, err)
		ids := make([]int, len(got))
		for i, loc := range got {
			ids[i] = loc.ID
		}
		assert.ElementsMatch(t, []int{1, 2, 10}, ids)
	})

	t.Run("ranks by earliest date then distance", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		geo := new(MockGeolocationProvider)

		near := location(1, "Near", day1)
		far := location(2, "Far", day1)
		later := location(3, "Later", day2)

		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{later, far, near}, nil)

		origin := providers.Coordinates{Latitude: 30.23, Longitude: -97.71}
		geo.On("ResolveZip", mock.Anything, "78741").Return(&origin, nil)
		// Distances in merge order: later, far, near.
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(25.0).Once()
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(40.0).Once()
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(5.0).Once()

		service := services.NewAggregationService(scheduler, geo, nil, nil, 1)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:        []string{"Austin"},
			OriginZip:     "78741",
			ServiceTypeID: 71,
		})

		require.NoError(t, err)
		require.Len(t, got, 3)
		// Same-day locations ordered by distance, later date last.
		assert.Equal(t, "Near", got[0].Name)
		assert.Equal(t, "Far", got[1].Name)
		assert.Equal(t, "Later", got[2].Name)
	})

	t.Run("unresolvable origin leaves distances undefined and filter off", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		geo := new(MockGeolocationProvider)

		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{location(1, "Austin South", day1)}, nil)
		geo.On("ResolveZip", mock.Anything, "00000").
			Return(nil, apperrors.NewInvalidZipError("zip 00000 did not resolve"))

		service := services.NewAggregationService(scheduler, geo, nil, nil, 1)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:           []string{"Austin"},
			OriginZip:        "00000",
			MaxDistanceMiles: 1,
			ServiceTypeID:    71,
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].DistanceMiles)
		geo.AssertNotCalled(t, "Distance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("distance and date window filters apply", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		geo := new(MockGeolocationProvider)

		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{
				location(1, "In Range", day2),
				location(2, "Too Far", day2),
				location(3, "Too Late", day3),
			}, nil)

		origin := providers.Coordinates{Latitude: 30.23, Longitude: -97.71}
		geo.On("ResolveZip", mock.Anything, "78741").Return(&origin, nil)
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(10.0).Once()
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(80.0).Once()
		geo.On("Distance", origin, mock.Anything, providers.UnitMiles).Return(10.0).Once()

		service := services.NewAggregationService(scheduler, geo, nil, nil, 1)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:           []string{"Austin"},
			OriginZip:        "78741",
			MaxDistanceMiles: 50,
			MaxDate:          day2.Add(12 * time.Hour),
			ServiceTypeID:    71,
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "In Range", got[0].Name)
	})

	t.Run("failed city is skipped by default", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{location(1, "Austin South", day1)}, nil)
		scheduler.On("FindNearestLocations", mock.Anything, "Waco", 71).
			Return(nil, apperrors.NewRemoteUnavailableError("timeout", nil))

		service := services.NewAggregationService(scheduler, nil, nil, nil, 1)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:        []string{"Austin", "Waco"},
			ServiceTypeID: 71,
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].ID)
	})

	t.Run("strict mode aborts the pass on the first failed city", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		scheduler.On("FindNearestLocations", mock.Anything, mock.Anything, 71).
			Return(nil, apperrors.NewRemoteUnavailableError("timeout", nil)).Maybe()

		service := services.NewAggregationService(scheduler, nil, nil, nil, 1)
		_, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:        []string{"Austin", "Waco"},
			ServiceTypeID: 71,
			StrictCities:  true,
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRemoteUnavailable))
	})

	t.Run("empty city list falls back to the scheduler's full list", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		scheduler.On("ListCities", mock.Anything).
			Return([]entities.City{{Name: "Austin"}, {Name: "Dallas"}}, nil)
		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{location(1, "Austin South", day1)}, nil)
		scheduler.On("FindNearestLocations", mock.Anything, "Dallas", 71).
			Return([]entities.Location{location(2, "Dallas Downtown", day2)}, nil)

		service := services.NewAggregationService(scheduler, nil, nil, nil, 2)
		got, err := service.Aggregate(ctx, entities.SearchCriteria{ServiceTypeID: 71})

		require.NoError(t, err)
		assert.Len(t, got, 2)
		scheduler.AssertExpectations(t)
	})

	t.Run("snapshot is written per pass", func(t *testing.T) {
		scheduler := new(MockSchedulerProvider)
		snapshots := new(MockSnapshotStore)
		scheduler.On("FindNearestLocations", mock.Anything, "Austin", 71).
			Return([]entities.Location{location(1, "Austin South", day1)}, nil)
		snapshots.On("Write", mock.Anything, mock.Anything).Return(nil)

		service := services.NewAggregationService(scheduler, nil, snapshots, nil, 1)
		_, err := service.Aggregate(ctx, entities.SearchCriteria{
			Cities:        []string{"Austin"},
			ServiceTypeID: 71,
		})

		require.NoError(t, err)
		snapshots.AssertCalled(t, "Write", mock.Anything, mock.Anything)
	})
}

func TestAggregationService_MatchSlots(t *testing.T) {
	ctx := context.Background()
	scheduler := new(MockSchedulerProvider)

	slot := &entities.SlotDetail{LocationID: 1, SlotID: 900, StartTime: day1, DurationMinutes: 20}
	scheduler.On("NextAppointment", mock.Anything, 1, 71).Return(slot, nil)
	scheduler.On("NextAppointment", mock.Anything, 2, 71).
		Return(nil, apperrors.NewNoSlotError("no open slots at location 2"))
	scheduler.On("NextAppointment", mock.Anything, 3, 71).
		Return(nil, apperrors.NewRemoteUnavailableError("timeout", nil))

	service := services.NewAggregationService(scheduler, nil, nil, nil, 1)
	matches := service.MatchSlots(ctx, []entities.Location{
		location(1, "Has Slot", day1),
		location(2, "No Slot", day1),
		location(3, "Broken", day1),
	}, 71)

	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Location.ID)
	assert.Equal(t, 900, matches[0].Slot.SlotID)
}
