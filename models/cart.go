package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customizations are free-form options chosen for a cart line, e.g.
// {"color": "Midnight Black", "size": "M"}. Two lines are the same line
// when product and customizations are equal.
type Customizations map[string]string

// Equal compares two customizations, treating nil and empty as equal.
func (c Customizations) Equal(other Customizations) bool {
	if len(c) != len(other) {
		return false
	}
	for k, v := range c {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Normalize trims keys and values and drops empty entries.
func (c Customizations) Normalize() Customizations {
	out := Customizations{}
	for k, v := range c {
		k = strings.TrimSpace(strings.ToLower(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Key renders a stable string for logging and cache keys.
func (c Customizations) Key() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(c[k])
	}
	return b.String()
}

func (c Customizations) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Cart struct {
	ID        int             `json:"id"`
	UserID    *int            `json:"user_id,omitempty"`
	SessionID *string         `json:"session_id,omitempty"`
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID             int             `json:"id"`
	CartID         int             `json:"cart_id"`
	ProductID      int             `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductImage   string          `json:"product_image"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	StockQuantity  int             `json:"stock_quantity"`
	Quantity       int             `json:"quantity"`
	Customizations Customizations  `json:"customizations"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartOwner identifies whose cart a request operates on: a signed-in user
// or a guest session. Exactly one of the fields is set.
type CartOwner struct {
	UserID    int
	SessionID string
}

func (o CartOwner) IsGuest() bool {
	return o.UserID == 0
}

func (o CartOwner) Valid() bool {
	return o.UserID > 0 || o.SessionID != ""
}

// Summarize fills ItemCount and Subtotal from Items.
func (c *Cart) Summarize() {
	c.ItemCount = 0
	c.Subtotal = decimal.Zero
	for _, item := range c.Items {
		c.ItemCount += item.Quantity
		c.Subtotal = c.Subtotal.Add(item.LineTotal())
	}
}
