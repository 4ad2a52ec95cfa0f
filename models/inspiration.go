package models

import "time"

type Inspiration struct {
	ID           int                  `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ImageURL     string               `json:"image_url"`
	Category     string               `json:"category"`
	Difficulty   string               `json:"difficulty"`
	IsActive     bool                 `json:"is_active"`
	ProductCount int                  `json:"product_count"`
	Products     []InspirationProduct `json:"products,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type InspirationProduct struct {
	Product
	DisplayOrder int  `json:"display_order"`
	IsPrimary    bool `json:"is_primary"`
}
