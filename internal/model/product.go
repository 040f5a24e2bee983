package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogued item with its current price and on-hand
// stock. StockQuantity is only ever mutated through the stock ledger.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SKU           string    `json:"sku" db:"sku"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	Price         Cents     `json:"price" db:"price"`
	StockQuantity int       `json:"stockQuantity" db:"stock_quantity"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	SKU           string `json:"sku" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Category      string `json:"category"`
	Price         Cents  `json:"price" validate:"gte=0"`
	StockQuantity int    `json:"stockQuantity" validate:"gte=0"`
}

// UpdateProductRequest represents the request payload for updating a product.
// Nil fields are left unchanged. Price changes never alter subtotals frozen
// on existing orders.
type UpdateProductRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Price    *Cents  `json:"price,omitempty"`
}
