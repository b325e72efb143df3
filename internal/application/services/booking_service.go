package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	"github.com/slotscout/slotscout/internal/infrastructure/observability"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

// defaultBookingHorizon bounds the acceptable appointment window when the
// applicant has no existing booking to beat.
const defaultBookingHorizon = 30 * 24 * time.Hour

// BookingService drives a booking attempt through its hold, confirm and
// commit steps. Every failure path notifies the contact before the error
// propagates.
type BookingService struct {
	scheduler providers.SchedulerProvider
	notifier  *NotificationService
}

// NewBookingService creates a new booking service
func NewBookingService(scheduler providers.SchedulerProvider, notifier *NotificationService) *BookingService {
	return &BookingService{
		scheduler: scheduler,
		notifier:  notifier,
	}
}

// HoldAndBook runs one complete booking attempt: hold the slot, confirm the
// hold, then commit it as a new booking or as a reschedule of a colliding
// one. The request must be freshly built for this attempt.
func (s *BookingService) HoldAndBook(ctx context.Context, req *entities.BookingRequest) (*entities.BookingOutcome, error) {
	logger := observability.GetLogger().With().
		Str("attempt_id", uuid.New().String()).
		Int("slot_id", req.SlotID).
		Int("location_id", req.LocationID).
		Logger()

	if err := s.scheduler.HoldSlot(ctx, req.SlotID, req.Applicant); err != nil {
		logger.Error().Err(err).Msg("failed to hold slot")
		s.notifier.NotifyBookingFailed(ctx, req.Contact, err)
		return nil, err
	}
	logger.Info().Msg("slot held")

	existing, err := s.scheduler.ExistingBookings(ctx, req.Applicant)
	if err != nil {
		logger.Error().Err(err).Msg("failed to confirm hold")
		s.notifier.NotifyBookingFailed(ctx, req.Contact, err)
		return nil, err
	}

	collision := findCollision(existing, req.ServiceTypeID)

	var result *entities.BookingResult
	status := entities.OutcomeBooked
	if collision != nil {
		logger.Info().Int("booking_id", collision.BookingID).Msg("rescheduling colliding booking")
		status = entities.OutcomeRescheduled
		result, err = s.scheduler.RescheduleBooking(ctx, req)
	} else {
		result, err = s.scheduler.SubmitBooking(ctx, req)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to commit booking")
		s.notifier.NotifyBookingFailed(ctx, req.Contact, err)
		return nil, err
	}
	if result.ErrorMessage != "" {
		bookErr := apperrors.NewBookingFailedError(result.ErrorMessage)
		logger.Error().Str("remote_error", result.ErrorMessage).Msg("scheduler rejected booking")
		s.notifier.NotifyBookingFailed(ctx, req.Contact, bookErr)
		return &entities.BookingOutcome{Status: entities.OutcomeFailed, Reason: result.ErrorMessage}, bookErr
	}

	outcome := &entities.BookingOutcome{
		Status:             status,
		ConfirmationNumber: result.ConfirmationNumber,
	}
	logger.Info().Str("confirmation", result.ConfirmationNumber).Msg("booking committed")

	slot := entities.SlotDetail{
		LocationID:      req.LocationID,
		SlotID:          req.SlotID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	}
	s.notifier.Dispatch(ctx, req.Contact,
		s.notifier.BuildBookingConfirmation(outcome, slot),
		"DPS appointment booked")
	return outcome, nil
}

// InferMaxDate derives the latest acceptable appointment date for the
// applicant: the date of their earliest existing booking when one exists
// (only earlier appointments are worth taking), otherwise a fixed horizon
// from now.
func (s *BookingService) InferMaxDate(ctx context.Context, applicant entities.Applicant) (time.Time, error) {
	existing, err := s.scheduler.ExistingBookings(ctx, applicant)
	if err != nil {
		return time.Time{}, err
	}

	var earliest time.Time
	for _, b := range existing {
		if earliest.IsZero() || b.BookingDateTime.Before(earliest) {
			earliest = b.BookingDateTime
		}
	}
	if earliest.IsZero() {
		return time.Now().Add(defaultBookingHorizon), nil
	}
	return earliest, nil
}

// Cancel cancels an existing booking.
func (s *BookingService) Cancel(ctx context.Context, bookingID int) error {
	return s.scheduler.CancelBooking(ctx, bookingID)
}

// findCollision returns the applicant's existing booking for the same
// service type, if any. The scheduler forbids two bookings of one type, so
// such a booking must be rescheduled rather than duplicated.
func findCollision(existing []entities.ExistingBooking, serviceTypeID int) *entities.ExistingBooking {
	for i := range existing {
		if existing[i].ServiceTypeID == serviceTypeID {
			return &existing[i]
		}
	}
	return nil
}
