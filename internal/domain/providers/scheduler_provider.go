package providers

import (
	"context"

	"github.com/slotscout/slotscout/internal/domain/entities"
)

// SchedulerProvider defines the interface to the public appointment
// scheduler. Implementations never retry; retry policy belongs to callers.
type SchedulerProvider interface {
	// ListCities returns the scheduler's site-wide city list.
	ListCities(ctx context.Context) ([]entities.City, error)

	// FindNearestLocations returns up to five locations nearest the given
	// city that offer the given service type.
	FindNearestLocations(ctx context.Context, city string, serviceTypeID int) ([]entities.Location, error)

	// NextAppointment returns the earliest open slot at a location, or a
	// no-slot error when the location has none.
	NextAppointment(ctx context.Context, locationID, serviceTypeID int) (*entities.SlotDetail, error)

	// HoldSlot places a temporary, non-final reservation on a slot.
	HoldSlot(ctx context.Context, slotID int, applicant entities.Applicant) error

	// ExistingBookings confirms the held slot and returns all of the
	// applicant's bookings, not just the new one.
	ExistingBookings(ctx context.Context, applicant entities.Applicant) ([]entities.ExistingBooking, error)

	// SubmitBooking commits the held slot as a new booking.
	SubmitBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error)

	// RescheduleBooking commits the held slot by rescheduling the
	// applicant's colliding booking for the same service type.
	RescheduleBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error)

	// CancelBooking cancels an existing booking. One-shot, no intermediate
	// states.
	CancelBooking(ctx context.Context, bookingID int) error
}
