package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeRemoteUnavailable indicates a network or timeout failure
	// talking to the remote scheduler. Callers decide whether to retry.
	ErrorTypeRemoteUnavailable ErrorType = "REMOTE_UNAVAILABLE"

	// ErrorTypeUnexpectedResponse indicates an HTTP success whose payload
	// does not conform to the expected schema. Never retried.
	ErrorTypeUnexpectedResponse ErrorType = "UNEXPECTED_RESPONSE"

	// ErrorTypeParse indicates a free-text field (address, map link) that
	// does not match the expected shape. Never retried.
	ErrorTypeParse ErrorType = "PARSE"

	// ErrorTypeNoSlot indicates a location with no open appointment. An
	// expected empty-result condition, not a failure.
	ErrorTypeNoSlot ErrorType = "NO_SLOT"

	// ErrorTypeInvalidZip indicates a postal code that did not resolve.
	// Degrades distance filtering rather than aborting.
	ErrorTypeInvalidZip ErrorType = "INVALID_ZIP"

	// ErrorTypeDelivery indicates a notification channel failure. Logged,
	// never fatal to the operation that produced the message.
	ErrorTypeDelivery ErrorType = "DELIVERY"

	// ErrorTypeBookingFailed indicates the scheduler rejected a booking.
	// Terminal; carries the remote-supplied error text verbatim.
	ErrorTypeBookingFailed ErrorType = "BOOKING_FAILED"

	// ErrorTypeValidation indicates invalid caller input.
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal error.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewRemoteUnavailableError creates a new remote-unavailable error
func NewRemoteUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRemoteUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewUnexpectedResponseError creates a new unexpected-response error. The
// message should include the offending payload fragment for the log.
func NewUnexpectedResponseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUnexpectedResponse,
		Message: message,
		Err:     err,
	}
}

// NewParseError creates a new parse error
func NewParseError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: message,
	}
}

// NewNoSlotError creates a new no-slot error
func NewNoSlotError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNoSlot,
		Message: message,
	}
}

// NewInvalidZipError creates a new invalid-zip error
func NewInvalidZipError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidZip,
		Message: message,
	}
}

// NewDeliveryError creates a new delivery error
func NewDeliveryError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDelivery,
		Message: message,
		Err:     err,
	}
}

// NewBookingFailedError creates a new booking-failed error carrying the
// remote error text verbatim.
func NewBookingFailedError(remoteText string) *AppError {
	return &AppError{
		Type:    ErrorTypeBookingFailed,
		Message: remoteText,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}
