package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	SKU             string     `json:"sku" db:"sku"`
	Price           float64    `json:"price" db:"price"`
	DiscountedPrice *float64   `json:"discounted_price,omitempty" db:"discounted_price"`
	Brand           string     `json:"brand" db:"brand"`
	Model           string     `json:"model" db:"model"`
	Weight          *float64   `json:"weight,omitempty" db:"weight"`
	Active          bool       `json:"active" db:"active"`
	Featured        bool       `json:"featured" db:"featured"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
