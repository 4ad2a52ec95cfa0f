package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	Colors        []ProductColor  `json:"colors,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

type ProductColor struct {
	ID            int       `json:"id"`
	ProductID     int       `json:"product_id"`
	ColorName     string    `json:"color_name"`
	ColorHex      string    `json:"color_hex"`
	ImageURL      string    `json:"image_url"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProductFilter holds the list query; zero values mean "no filter".
type ProductFilter struct {
	Page     int
	Limit    int
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	Sort     string
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)
