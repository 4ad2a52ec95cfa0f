package libs

import "errors"

var (
	ErrPaymentsDisabled = errors.New("payment provider is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// PaymentEvent is a provider webhook reduced to what order handling needs.
type PaymentEvent struct {
	Provider  string
	Type      string
	Reference string
	OrderID   int
	// Amount is the paid amount in minor units, 0 when the provider sent none.
	Amount    int64
	Succeeded bool
	Failed    bool
}

type PaymentIntentRequest struct {
	OrderID     int
	OrderNumber string
	Amount      int64
	Email       string
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}
