package services

import (
	"context"
	"io"
	"time"

	"spooky-styles/libs"
	"spooky-styles/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/services_mock.go -package=mocks

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string)
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendOrderStatusUpdate(ctx context.Context, order *models.Order) error
}

// Notifier pushes live events to admin dashboards.
type Notifier interface {
	Broadcast(event string, payload any)
}

type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType string) (*libs.UploadResult, error)
	Delete(ctx context.Context, id string) error
}

type StripeGateway interface {
	Enabled() bool
	CreatePaymentIntent(ctx context.Context, req libs.PaymentIntentRequest) (*libs.PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (*libs.PaymentEvent, error)
}

type PaystackGateway interface {
	Enabled() bool
	Initialize(ctx context.Context, req libs.PaystackInitRequest) (*libs.PaystackInitResult, error)
	Verify(ctx context.Context, reference string) (*libs.PaystackTransaction, error)
	ParseWebhook(payload []byte, signature string) (*libs.PaymentEvent, error)
}
