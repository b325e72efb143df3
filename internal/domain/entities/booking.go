package entities

import "time"

// Applicant is the minimal identity the scheduler requires for hold and
// confirmation requests.
type Applicant struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Last4SSN    string
}

// Contact holds the channels a booking outcome is reported to. Either field
// may be empty; every supplied channel is used.
type Contact struct {
	Email string
	Phone string
}

// BookingRequest carries everything needed for one booking attempt. It is
// constructed once per attempt and never reused; a new hold requires a fresh
// request.
type BookingRequest struct {
	Applicant Applicant
	Contact   Contact

	CardNumber string

	SlotID          int
	LocationID      int
	StartTime       time.Time
	DurationMinutes int
	ServiceTypeID   int
}

// OutcomeStatus is the terminal state of a booking attempt.
type OutcomeStatus string

const (
	OutcomeBooked      OutcomeStatus = "BOOKED"
	OutcomeRescheduled OutcomeStatus = "RESCHEDULED"
	OutcomeFailed      OutcomeStatus = "FAILED"
)

// BookingOutcome is the terminal result of a booking attempt.
type BookingOutcome struct {
	Status             OutcomeStatus
	ConfirmationNumber string
	// Reason carries the remote-supplied error text verbatim when Status is
	// OutcomeFailed. It is the only diagnostic the scheduler provides.
	Reason string
}

// BookingResult is the raw terminal response from the scheduler's booking
// endpoints. ErrorMessage is non-empty when the remote rejected the booking.
type BookingResult struct {
	ConfirmationNumber string
	ErrorMessage       string
}

// ExistingBooking is one entry from the applicant's booking list returned by
// the confirmation step.
type ExistingBooking struct {
	BookingID          int
	ConfirmationNumber string
	ServiceTypeID      int
	SiteName           string
	BookingDateTime    time.Time
}
