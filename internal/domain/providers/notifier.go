package providers

import "context"

// SMSSender delivers a plain-text message to a phone number. Failures are
// delivery errors; callers log them but never treat them as fatal to the
// operation that triggered the message.
type SMSSender interface {
	Send(ctx context.Context, body, phone string) error
}

// EmailSender delivers a message to an email address under the same
// non-fatal delivery policy as SMSSender.
type EmailSender interface {
	Send(ctx context.Context, body, address, subject string) error
}
