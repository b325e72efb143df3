package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

// SendGridSender sends email via the SendGrid v3 mail API
type SendGridSender struct {
	apiKey     string
	fromEmail  string
	httpClient *http.Client
	baseURL    string
}

// NewSendGridSender creates a new SendGrid email sender
func NewSendGridSender(apiKey, fromEmail string) (*SendGridSender, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("sendgrid API key and from email must be set")
	}

	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.sendgrid.com",
	}, nil
}

// NewSendGridSenderWithOptions creates a sender against a custom endpoint
func NewSendGridSenderWithOptions(apiKey, fromEmail, baseURL string, httpClient *http.Client) *SendGridSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SendGridSender{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers an email. Plain-text bodies rely on fixed-width alignment,
// so the message is wrapped in a monospace pre block.
func (s *SendGridSender) Send(ctx context.Context, body, address, subject string) error {
	mail := sendGridMail{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: address}}}},
		From:             sendGridAddress{Email: s.fromEmail},
		Subject:          subject,
		Content: []sendGridContent{{
			Type:  "text/html",
			Value: fmt.Sprintf(`<pre style="font: monospace">%s</pre>`, body),
		}},
	}

	jsonData, err := json.Marshal(mail)
	if err != nil {
		return apperrors.NewDeliveryError("failed to marshal mail", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return apperrors.NewDeliveryError("failed to create mail request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError("failed to send mail", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return apperrors.NewDeliveryError(
			fmt.Sprintf("sendgrid API error (status %d): %s", resp.StatusCode, string(respBody)), nil)
	}
	return nil
}

var _ providers.EmailSender = (*SendGridSender)(nil)
