package services

import (
	"context"
	"time"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/infrastructure/observability"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
	"github.com/slotscout/slotscout/pkg/retry"
)

// PollOptions configures a watch loop.
type PollOptions struct {
	Criteria entities.SearchCriteria
	Contact  entities.Contact

	// AutoBook, when set, is the template request for booking the closest
	// match. Slot fields are filled in per attempt. Nil means notify-only.
	AutoBook *entities.BookingRequest

	Interval time.Duration
}

// PollService repeats aggregation passes at a fixed interval, notifying on
// matches and, in autobook mode, booking the closest one. Cycles do not
// overlap; the next interval starts when the previous cycle finishes.
type PollService struct {
	aggregation *AggregationService
	booking     *BookingService
	notifier    *NotificationService
	retryCfg    retry.Config
}

// NewPollService creates a new poll service
func NewPollService(aggregation *AggregationService, booking *BookingService, notifier *NotificationService) *PollService {
	cfg := retry.DefaultConfig()
	cfg.IsRetryable = func(err error) bool {
		return apperrors.IsType(err, apperrors.ErrorTypeRemoteUnavailable)
	}
	return &PollService{
		aggregation: aggregation,
		booking:     booking,
		notifier:    notifier,
		retryCfg:    cfg,
	}
}

// Run polls until the context is cancelled or, in autobook mode, a booking
// succeeds. Cycle errors are logged; the loop keeps going.
func (s *PollService) Run(ctx context.Context, opts PollOptions) error {
	logger := observability.GetLogger()
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}

	for {
		booked, err := s.runCycle(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("poll cycle failed")
		}
		if booked {
			logger.Info().Msg("appointment booked, stopping poll loop")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}

// runCycle executes one aggregation pass and acts on the matches.
func (s *PollService) runCycle(ctx context.Context, opts PollOptions) (bool, error) {
	var locations []entities.Location
	err := retry.Do(ctx, s.retryCfg, func() error {
		var aggErr error
		locations, aggErr = s.aggregation.Aggregate(ctx, opts.Criteria)
		return aggErr
	})
	if err != nil {
		return false, err
	}
	if len(locations) == 0 {
		return false, nil
	}

	matches := s.aggregation.MatchSlots(ctx, locations, opts.Criteria.ServiceTypeID)
	if len(matches) == 0 {
		return false, nil
	}

	if opts.AutoBook == nil {
		s.notifier.NotifySlots(ctx, opts.Contact, matches)
		return false, nil
	}

	target := closestMatch(matches)

	// A fresh request per attempt; the template is never mutated. The
	// booking keeps running even if the poll context is cancelled mid-flight,
	// since an abandoned hold would block the slot for other applicants.
	req := *opts.AutoBook
	req.SlotID = target.Slot.SlotID
	req.LocationID = target.Location.ID
	req.StartTime = target.Slot.StartTime
	req.DurationMinutes = target.Slot.DurationMinutes

	outcome, err := s.booking.HoldAndBook(context.WithoutCancel(ctx), &req)
	if err != nil {
		return false, err
	}
	return outcome.Status == entities.OutcomeBooked || outcome.Status == entities.OutcomeRescheduled, nil
}

// closestMatch picks the match with the smallest defined distance, falling
// back to the first (earliest-ranked) match when no distances are defined.
func closestMatch(matches []entities.LocationSlot) entities.LocationSlot {
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Location.DistanceMiles == nil {
			continue
		}
		if best.Location.DistanceMiles == nil || *m.Location.DistanceMiles < *best.Location.DistanceMiles {
			best = m
		}
	}
	return best
}
