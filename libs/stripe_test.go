package libs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"spooky-styles/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStripeSecret = "whsec_test"

func signStripe(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func stripeEvent(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "amount_received": 6599, "metadata": {"order_id": "42"}}}
	}`, eventType))
}

func TestStripeClient_ParseWebhook(t *testing.T) {
	s := NewStripeClient(config.StripeConfig{WebhookSecret: testStripeSecret})

	tests := []struct {
		eventType     string
		wantSucceeded bool
		wantFailed    bool
		wantRef       string
	}{
		{"payment_intent.succeeded", true, false, "pi_123"},
		{"payment_intent.payment_failed", false, true, "pi_123"},
		{"customer.created", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			payload := stripeEvent(tt.eventType)
			ev, err := s.ParseWebhook(payload, signStripe(payload, testStripeSecret, time.Now()))
			require.NoError(t, err)

			assert.Equal(t, tt.wantSucceeded, ev.Succeeded)
			assert.Equal(t, tt.wantFailed, ev.Failed)
			assert.Equal(t, tt.wantRef, ev.Reference)
			if tt.wantRef != "" {
				assert.Equal(t, 42, ev.OrderID)
			}
			if tt.wantSucceeded {
				assert.Equal(t, int64(6599), ev.Amount)
			} else {
				assert.Zero(t, ev.Amount)
			}
		})
	}
}

func TestStripeClient_ParseWebhook_BadSignature(t *testing.T) {
	s := NewStripeClient(config.StripeConfig{WebhookSecret: testStripeSecret})
	payload := stripeEvent("payment_intent.succeeded")

	_, err := s.ParseWebhook(payload, signStripe(payload, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = s.ParseWebhook(payload, signStripe(payload, testStripeSecret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeClient_Disabled(t *testing.T) {
	s := NewStripeClient(config.StripeConfig{})
	assert.False(t, s.Enabled())

	_, err := s.CreatePaymentIntent(t.Context(), PaymentIntentRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrPaymentsDisabled)

	_, err = s.ParseWebhook([]byte("{}"), "t=1,v1=00")
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}
