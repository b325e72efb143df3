package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	"github.com/slotscout/slotscout/internal/infrastructure/observability"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

const (
	slotAlertHeader   = "Slots have opened up at the following DPS locations matching your criteria:\n\n"
	slotAlertTimeFmt  = "01/02/2006 03:04 PM"
	bookingFailHeader = "Almost! Failed to book appointment.\n\n"
)

// NotificationService renders messages and dispatches them to whichever
// channels the contact supplies. Either sender may be nil when the channel
// is not configured.
type NotificationService struct {
	sms   providers.SMSSender
	email providers.EmailSender
}

// NewNotificationService creates a new notification service
func NewNotificationService(sms providers.SMSSender, email providers.EmailSender) *NotificationService {
	return &NotificationService{
		sms:   sms,
		email: email,
	}
}

// BuildSlotAlert renders the open-slot digest. Location names are padded to
// a common width so the lines align in a monospace rendering.
func (n *NotificationService) BuildSlotAlert(matches []entities.LocationSlot) string {
	maxLen := 0
	for _, m := range matches {
		if len(m.Location.Name) > maxLen {
			maxLen = len(m.Location.Name)
		}
	}

	var b strings.Builder
	b.WriteString(slotAlertHeader)
	for _, m := range matches {
		b.WriteString(fmt.Sprintf("%-*s (ID: %d) @ %-20s (%d min), Slot ID: %d\n",
			maxLen+1, m.Location.Name,
			m.Location.ID,
			m.Slot.StartTime.Format(slotAlertTimeFmt),
			m.Slot.DurationMinutes,
			m.Slot.SlotID,
		))
	}
	b.WriteString("\n")
	return b.String()
}

// BuildBookingFailure renders a booking-failure message around the
// remote-supplied error text.
func (n *NotificationService) BuildBookingFailure(remoteText string) string {
	return bookingFailHeader + remoteText
}

// BuildBookingConfirmation renders a booking-success message including the
// cancellation link for the confirmation number.
func (n *NotificationService) BuildBookingConfirmation(outcome *entities.BookingOutcome, slot entities.SlotDetail) string {
	verb := "booked"
	if outcome.Status == entities.OutcomeRescheduled {
		verb = "rescheduled"
	}
	return fmt.Sprintf(
		"Appointment %s for %s.\nConfirmation number: %s\nCancel here if needed: https://public.txdpsscheduler.com?b=%s\n",
		verb,
		slot.StartTime.Format(slotAlertTimeFmt),
		outcome.ConfirmationNumber,
		outcome.ConfirmationNumber,
	)
}

// Dispatch sends body to every channel the contact supplies and this service
// has a sender for. Delivery failures are logged per channel and never abort
// the remaining channels or the caller's operation.
func (n *NotificationService) Dispatch(ctx context.Context, contact entities.Contact, body, subject string) {
	logger := observability.GetLogger()

	if n.sms != nil && contact.Phone != "" {
		if err := n.sms.Send(ctx, body, contact.Phone); err != nil {
			logger.Error().Err(err).Str("phone", contact.Phone).Msg("failed to deliver SMS")
		}
	}
	if n.email != nil && contact.Email != "" {
		if err := n.email.Send(ctx, body, contact.Email, subject); err != nil {
			logger.Error().Err(err).Str("email", contact.Email).Msg("failed to deliver email")
		}
	}
}

// NotifySlots renders and dispatches an open-slot digest.
func (n *NotificationService) NotifySlots(ctx context.Context, contact entities.Contact, matches []entities.LocationSlot) {
	if len(matches) == 0 {
		return
	}
	n.Dispatch(ctx, contact, n.BuildSlotAlert(matches), "DPS appointment slots found")
}

// NotifyBookingFailed renders and dispatches a booking-failure message. The
// booking error itself still propagates to the caller; only delivery errors
// are swallowed here.
func (n *NotificationService) NotifyBookingFailed(ctx context.Context, contact entities.Contact, bookingErr error) {
	remoteText := bookingErr.Error()
	var appErr *apperrors.AppError
	if errors.As(bookingErr, &appErr) && appErr.Type == apperrors.ErrorTypeBookingFailed {
		// Remote error text verbatim, without the taxonomy prefix.
		remoteText = appErr.Message
	}
	n.Dispatch(ctx, contact, n.BuildBookingFailure(remoteText), "DPS appointment booking failed")
}
