package scheduling

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

const (
	breakerOpenTimeout       = 2 * time.Minute
	breakerFailureThreshold  = 5
	breakerHalfOpenMaxProbes = 1
)

// BreakerProvider wraps a SchedulerProvider in a circuit breaker so a dead
// remote trips fast between poll cycles instead of burning the full timeout
// on every city. Only remote-unavailable failures count against the breaker;
// expected conditions (no slot) and schema errors pass through without
// tripping it. An open breaker surfaces as a remote-unavailable error.
type BreakerProvider struct {
	inner providers.SchedulerProvider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider creates a new breaker around the given provider.
func NewBreakerProvider(inner providers.SchedulerProvider) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scheduler",
		MaxRequests: breakerHalfOpenMaxProbes,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.IsType(err, apperrors.ErrorTypeRemoteUnavailable)
		},
	})
	return &BreakerProvider{inner: inner, cb: cb}
}

func (b *BreakerProvider) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.NewRemoteUnavailableError("scheduler circuit breaker is open", err)
	}
	return result, err
}

func (b *BreakerProvider) ListCities(ctx context.Context) ([]entities.City, error) {
	result, err := b.execute(func() (any, error) { return b.inner.ListCities(ctx) })
	if err != nil {
		return nil, err
	}
	return result.([]entities.City), nil
}

func (b *BreakerProvider) FindNearestLocations(ctx context.Context, city string, serviceTypeID int) ([]entities.Location, error) {
	result, err := b.execute(func() (any, error) { return b.inner.FindNearestLocations(ctx, city, serviceTypeID) })
	if err != nil {
		return nil, err
	}
	return result.([]entities.Location), nil
}

func (b *BreakerProvider) NextAppointment(ctx context.Context, locationID, serviceTypeID int) (*entities.SlotDetail, error) {
	result, err := b.execute(func() (any, error) { return b.inner.NextAppointment(ctx, locationID, serviceTypeID) })
	if err != nil {
		return nil, err
	}
	return result.(*entities.SlotDetail), nil
}

func (b *BreakerProvider) HoldSlot(ctx context.Context, slotID int, applicant entities.Applicant) error {
	_, err := b.execute(func() (any, error) { return nil, b.inner.HoldSlot(ctx, slotID, applicant) })
	return err
}

func (b *BreakerProvider) ExistingBookings(ctx context.Context, applicant entities.Applicant) ([]entities.ExistingBooking, error) {
	result, err := b.execute(func() (any, error) { return b.inner.ExistingBookings(ctx, applicant) })
	if err != nil {
		return nil, err
	}
	return result.([]entities.ExistingBooking), nil
}

func (b *BreakerProvider) SubmitBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	result, err := b.execute(func() (any, error) { return b.inner.SubmitBooking(ctx, req) })
	if err != nil {
		return nil, err
	}
	return result.(*entities.BookingResult), nil
}

func (b *BreakerProvider) RescheduleBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	result, err := b.execute(func() (any, error) { return b.inner.RescheduleBooking(ctx, req) })
	if err != nil {
		return nil, err
	}
	return result.(*entities.BookingResult), nil
}

func (b *BreakerProvider) CancelBooking(ctx context.Context, bookingID int) error {
	_, err := b.execute(func() (any, error) { return nil, b.inner.CancelBooking(ctx, bookingID) })
	return err
}

var _ providers.SchedulerProvider = (*BreakerProvider)(nil)
