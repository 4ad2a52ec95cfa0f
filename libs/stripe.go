package libs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"spooky-styles/config"
	"spooky-styles/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeClient struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	s := &StripeClient{webhookSecret: cfg.WebhookSecret, currency: cfg.Currency}
	if cfg.SecretKey != "" {
		s.api = &client.API{}
		s.api.Init(cfg.SecretKey, nil)
	}
	return s
}

func (s *StripeClient) Enabled() bool {
	return s.api != nil
}

func (s *StripeClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	if !s.Enabled() {
		return nil, ErrPaymentsDisabled
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.Itoa(req.OrderID))
	params.AddMetadata("order_number", req.OrderNumber)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// payment intent outcome. Unrelated event types come back with neither
// Succeeded nor Failed set.
func (s *StripeClient) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	if s.webhookSecret == "" {
		return nil, ErrPaymentsDisabled
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev := &PaymentEvent{Provider: models.PaymentProviderStripe, Type: string(event.Type)}
	switch ev.Type {
	case "payment_intent.succeeded":
		ev.Succeeded = true
	case "payment_intent.payment_failed":
		ev.Failed = true
	default:
		return ev, nil
	}

	var pi stripe.PaymentIntent
	if event.Data == nil {
		return nil, fmt.Errorf("stripe: event %s has no data", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: decode payment intent: %w", err)
	}
	ev.Reference = pi.ID
	if ev.Succeeded {
		ev.Amount = pi.AmountReceived
	}
	ev.OrderID, _ = strconv.Atoi(pi.Metadata["order_id"])
	return ev, nil
}
