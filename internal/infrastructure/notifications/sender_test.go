package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

func TestNewTwilioSender(t *testing.T) {
	tests := []struct {
		name       string
		accountSID string
		authToken  string
		fromNumber string
		wantErr    bool
	}{
		{name: "Valid credentials", accountSID: "AC123", authToken: "token", fromNumber: "+15125550100", wantErr: false},
		{name: "Missing account SID", accountSID: "", authToken: "token", fromNumber: "+15125550100", wantErr: true},
		{name: "Missing from number", accountSID: "AC123", authToken: "token", fromNumber: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewTwilioSender(tt.accountSID, tt.authToken, tt.fromNumber)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sender)
		})
	}
}

func TestTwilioSender_Send(t *testing.T) {
	t.Run("posts form with US country prefix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "AC123", user)
			assert.Equal(t, "token", pass)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "+15125550142", r.PostForm.Get("To"))
			assert.Equal(t, "+15125550100", r.PostForm.Get("From"))
			assert.Equal(t, "slots are open", r.PostForm.Get("Body"))

			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		sender := NewTwilioSenderWithOptions("AC123", "token", "+15125550100", server.URL, server.Client())
		err := sender.Send(context.Background(), "slots are open", "5125550142")
		assert.NoError(t, err)
	})

	t.Run("non-2xx is a delivery error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "authenticate"}`))
		}))
		defer server.Close()

		sender := NewTwilioSenderWithOptions("AC123", "bad", "+15125550100", server.URL, server.Client())
		err := sender.Send(context.Background(), "hi", "5125550142")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDelivery))
	})

	t.Run("unreachable host is a delivery error", func(t *testing.T) {
		sender := NewTwilioSenderWithOptions("AC123", "token", "+15125550100", "http://127.0.0.1:1", nil)
		err := sender.Send(context.Background(), "hi", "5125550142")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDelivery))
	})
}

func TestNewSendGridSender(t *testing.T) {
	_, err := NewSendGridSender("", "alerts@example.com")
	assert.Error(t, err)

	sender, err := NewSendGridSender("SG.key", "alerts@example.com")
	require.NoError(t, err)
	assert.NotNil(t, sender)
}

func TestSendGridSender_Send(t *testing.T) {
	t.Run("posts monospace HTML body", func(t *testing.T) {
		var captured sendGridMail
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v3/mail/send", r.URL.Path)
			assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		sender := NewSendGridSenderWithOptions("SG.key", "alerts@example.com", server.URL, server.Client())
		err := sender.Send(context.Background(), "line one\nline two", "user@example.com", "New openings")
		require.NoError(t, err)

		assert.Equal(t, "New openings", captured.Subject)
		assert.Equal(t, "alerts@example.com", captured.From.Email)
		require.Len(t, captured.Personalizations, 1)
		assert.Equal(t, "user@example.com", captured.Personalizations[0].To[0].Email)
		require.Len(t, captured.Content, 1)
		assert.Equal(t, "text/html", captured.Content[0].Type)
		assert.True(t, strings.HasPrefix(captured.Content[0].Value, `<pre style="font: monospace">`))
		assert.Contains(t, captured.Content[0].Value, "line one\nline two")
	})

	t.Run("non-2xx is a delivery error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		sender := NewSendGridSenderWithOptions("SG.key", "alerts@example.com", server.URL, server.Client())
		err := sender.Send(context.Background(), "hi", "user@example.com", "subject")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDelivery))
	})
}
