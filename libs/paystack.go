package libs

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spooky-styles/config"
	"spooky-styles/models"

	"github.com/go-resty/resty/v2"
)

type PaystackClient struct {
	http        *resty.Client
	secret      string
	callbackURL string
	currency    string
}

type PaystackInitRequest struct {
	Email     string
	Amount    int64
	Reference string
	OrderID   int
}

type PaystackInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackTransaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

func (t PaystackTransaction) Succeeded() bool {
	return t.Status == "success"
}

type paystackResponse[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func NewPaystackClient(cfg config.PaystackConfig) *PaystackClient {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &PaystackClient{
		http:        http,
		secret:      cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		currency:    cfg.Currency,
	}
}

func (p *PaystackClient) Enabled() bool {
	return p.secret != ""
}

func (p *PaystackClient) Initialize(ctx context.Context, req PaystackInitRequest) (*PaystackInitResult, error) {
	if !p.Enabled() {
		return nil, ErrPaymentsDisabled
	}

	body := map[string]any{
		"email":     req.Email,
		"amount":    req.Amount,
		"reference": req.Reference,
		"currency":  p.currency,
		"metadata":  map[string]any{"order_id": req.OrderID},
	}
	if p.callbackURL != "" {
		body["callback_url"] = p.callbackURL
	}

	var out paystackResponse[PaystackInitResult]
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("paystack: initialize: %w", err)
	}
	if resp.IsError() || !out.Status {
		return nil, fmt.Errorf("paystack: initialize failed (%d): %s", resp.StatusCode(), out.Message)
	}
	return &out.Data, nil
}

func (p *PaystackClient) Verify(ctx context.Context, reference string) (*PaystackTransaction, error) {
	if !p.Enabled() {
		return nil, ErrPaymentsDisabled
	}

	var out paystackResponse[PaystackTransaction]
	resp, err := p.http.R().
		SetContext(ctx).
		SetPathParam("reference", reference).
		SetResult(&out).
		SetError(&out).
		Get("/transaction/verify/{reference}")
	if err != nil {
		return nil, fmt.Errorf("paystack: verify: %w", err)
	}
	if resp.IsError() || !out.Status {
		return nil, fmt.Errorf("paystack: verify failed (%d): %s", resp.StatusCode(), out.Message)
	}
	return &out.Data, nil
}

// VerifySignature checks x-paystack-signature, the hex HMAC-SHA512 of the
// raw body keyed with the secret key.
func (p *PaystackClient) VerifySignature(payload []byte, signature string) bool {
	if p.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (p *PaystackClient) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	if !p.VerifySignature(payload, signature) {
		return nil, ErrInvalidSignature
	}

	var body struct {
		Event string              `json:"event"`
		Data  PaystackTransaction `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("paystack: decode webhook: %w", err)
	}
	if body.Data.Reference == "" {
		return nil, errors.New("paystack: webhook without reference")
	}

	return &PaymentEvent{
		Provider:  models.PaymentProviderPaystack,
		Type:      body.Event,
		Reference: body.Data.Reference,
		Amount:    body.Data.Amount,
		Succeeded: body.Event == "charge.success" && body.Data.Succeeded(),
		Failed:    body.Event == "charge.failed",
	}, nil
}
