package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

// TwilioSender sends SMS messages via the Twilio REST API
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
	baseURL    string
}

// NewTwilioSender creates a new Twilio SMS sender
func NewTwilioSender(accountSID, authToken, fromNumber string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil, fmt.Errorf("twilio account SID, auth token and from number must be set")
	}

	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.twilio.com/2010-04-01",
	}, nil
}

// NewTwilioSenderWithOptions creates a sender against a custom endpoint
func NewTwilioSenderWithOptions(accountSID, authToken, fromNumber, baseURL string, httpClient *http.Client) *TwilioSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Send delivers an SMS to a ten-digit US phone number
func (s *TwilioSender) Send(ctx context.Context, body, phone string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	form := url.Values{}
	form.Set("From", s.fromNumber)
	form.Set("To", "+1"+phone)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.NewDeliveryError("failed to create SMS request", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError("failed to send SMS", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return apperrors.NewDeliveryError(
			fmt.Sprintf("twilio API error (status %d): %s", resp.StatusCode, string(respBody)), nil)
	}
	return nil
}

var _ providers.SMSSender = (*TwilioSender)(nil)
