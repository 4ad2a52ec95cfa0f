package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"

	PaymentProviderStripe   = "stripe"
	PaymentProviderPaystack = "paystack"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(75)
	FlatShippingRate      = decimal.RequireFromString("5.99")
)

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusRefunded, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type ShippingInfo struct {
	FirstName  string `json:"first_name" binding:"omitempty,max=100"`
	LastName   string `json:"last_name" binding:"omitempty,max=100"`
	Email      string `json:"email" binding:"omitempty,max=255"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
	Address    string `json:"address" binding:"omitempty,max=1000"`
	City       string `json:"city" binding:"omitempty,max=100"`
	State      string `json:"state" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Country    string `json:"country" binding:"omitempty,max=100"`
}

func (s ShippingInfo) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Order struct {
	ID               int             `json:"id"`
	OrderNumber      string          `json:"order_number"`
	UserID           *int            `json:"user_id,omitempty"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentProvider  string          `json:"payment_provider"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Shipping         ShippingInfo    `json:"shipping"`
	Notes            string          `json:"notes"`
	Items            []OrderItem     `json:"items,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (o Order) IsGuest() bool {
	return o.UserID == nil
}

// OwnedBy reports whether the order belongs to the given cart owner. Guest
// orders are never owned through a session; guests use order lookup.
func (o Order) OwnedBy(userID int) bool {
	return o.UserID != nil && *o.UserID == userID
}

type OrderItem struct {
	ID             int             `json:"id"`
	OrderID        int             `json:"order_id"`
	ProductID      *int            `json:"product_id,omitempty"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	Customizations Customizations  `json:"customizations"`
}

type OrderFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
	UserID int
}

// ComputeTotals derives subtotal, shipping, tax and total from the items.
// Orders at or above FreeShippingThreshold ship free; tax is not charged.
func (o *Order) ComputeTotals() {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	o.Subtotal = subtotal.Round(2)
	o.ShippingCost = ShippingFor(o.Subtotal)
	o.Tax = decimal.Zero
	o.Total = o.Subtotal.Add(o.ShippingCost).Add(o.Tax)
}

func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingRate
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MinorUnits converts a two-decimal amount to cents/kobo for payment providers.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// GenerateOrderNumber formats an order number as SS-YYYYMMDD-XXXXXXXX where
// suffix supplies the random part.
func GenerateOrderNumber(now time.Time, suffix string) string {
	return fmt.Sprintf("SS-%s-%s", now.Format("20060102"), suffix)
}
