package libs

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spooky-styles/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaystack(t *testing.T, handler http.HandlerFunc) *PaystackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPaystackClient(config.PaystackConfig{
		SecretKey:   "sk_test",
		BaseURL:     srv.URL,
		CallbackURL: "https://spooky.test/checkout/complete",
		Currency:    "NGN",
	})
}

func TestPaystackClient_Initialize(t *testing.T) {
	var got map[string]any
	client := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/x","access_code":"ac","reference":"SS-1"}}`))
	})

	res, err := client.Initialize(context.Background(), PaystackInitRequest{Email: "a@b.c", Amount: 12345, Reference: "SS-1", OrderID: 9})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/x", res.AuthorizationURL)
	assert.Equal(t, "SS-1", res.Reference)
	assert.Equal(t, float64(12345), got["amount"])
	assert.Equal(t, "NGN", got["currency"])
	assert.Equal(t, "https://spooky.test/checkout/complete", got["callback_url"])
}

func TestPaystackClient_InitializeError(t *testing.T) {
	client := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	})

	_, err := client.Initialize(context.Background(), PaystackInitRequest{Email: "a@b.c", Amount: 1, Reference: "SS-1"})
	assert.ErrorContains(t, err, "Duplicate Transaction Reference")
}

func TestPaystackClient_Verify(t *testing.T) {
	client := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/SS-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"SS-1","status":"success","amount":500,"currency":"NGN"}}`))
	})

	tx, err := client.Verify(context.Background(), "SS-1")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, int64(500), tx.Amount)
}

func signPaystack(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystackClient_ParseWebhook(t *testing.T) {
	client := NewPaystackClient(config.PaystackConfig{SecretKey: "sk_test"})
	payload := []byte(`{"event":"charge.success","data":{"reference":"SS-1","status":"success","amount":500}}`)

	ev, err := client.ParseWebhook(payload, signPaystack(payload, "sk_test"))
	require.NoError(t, err)
	assert.True(t, ev.Succeeded)
	assert.Equal(t, "SS-1", ev.Reference)
	assert.Equal(t, int64(500), ev.Amount)

	_, err = client.ParseWebhook(payload, signPaystack(payload, "sk_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = client.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
