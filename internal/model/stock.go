package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

// Movement reasons written by the order and settlement flows.
const (
	MovementReasonSale   = "sale"
	MovementReasonReturn = "return"
)

// StockMovement is an append-only stock ledger entry. Quantity is the
// requested amount (the absolute target for adjustments); AppliedDelta is
// the actual change made to the product's stock, which is smaller in
// magnitude than the requested amount when an outbound movement is clamped
// at zero.
type StockMovement struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	ProductID    uuid.UUID    `json:"productId" db:"product_id"`
	ProductName  string       `json:"productName" db:"product_name"`
	SKU          string       `json:"sku" db:"sku"`
	Type         MovementType `json:"type" db:"movement_type"`
	Quantity     int          `json:"quantity" db:"quantity"`
	AppliedDelta int          `json:"appliedDelta" db:"applied_delta"`
	Reason       string       `json:"reason" db:"reason"`
	Notes        string       `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}

// CreateStockMovementRequest represents the request payload for recording a
// stock movement.
type CreateStockMovementRequest struct {
	ProductID uuid.UUID    `json:"productId" validate:"required"`
	Type      MovementType `json:"type" validate:"required,oneof=in out adjustment"`
	Quantity  int          `json:"quantity" validate:"gte=0"`
	Reason    string       `json:"reason"`
	Notes     string       `json:"notes"`
}
