package model

import (
	"time"

	"github.com/google/uuid"
)

// ReturnStatusCompleted is the status assigned to a return at creation;
// settlement settles immediately.
const ReturnStatusCompleted = "completed"

// Return represents a processed return/exchange settlement. Financial
// fields are computed by the settlement engine, never user-entered.
type Return struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ReturnNumber  string    `json:"returnNumber" db:"return_number"`
	OrderID       uuid.UUID `json:"orderId" db:"order_id"`
	OrderNumber   string    `json:"orderNumber" db:"order_number"`
	CustomerName  string    `json:"customerName" db:"customer_name"`
	CustomerEmail *string   `json:"customerEmail,omitempty" db:"customer_email"`
	Status        string    `json:"status" db:"status"`
	Reason        string    `json:"reason" db:"reason"`
	RefundAmount  Cents     `json:"refundAmount" db:"refund_amount"`
	CreditAmount  Cents     `json:"creditAmount" db:"credit_amount"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// ReturnItem represents a returned line item, optionally exchanged for a
// different product at like-for-like count.
type ReturnItem struct {
	ID                  uuid.UUID  `json:"-" db:"id"`
	ReturnID            uuid.UUID  `json:"-" db:"return_id"`
	ProductID           uuid.UUID  `json:"productId" db:"product_id"`
	ProductName         string     `json:"productName" db:"product_name"`
	SKU                 string     `json:"sku" db:"sku"`
	Quantity            int        `json:"quantity" db:"quantity"`
	UnitPrice           Cents      `json:"unitPrice" db:"unit_price"`
	Subtotal            Cents      `json:"subtotal" db:"subtotal"`
	ExchangeProductID   *uuid.UUID `json:"exchangeProductId,omitempty" db:"exchange_product_id"`
	ExchangeProductName *string    `json:"exchangeProductName,omitempty" db:"exchange_product_name"`
}

// CreateReturnRequest represents the request payload for processing a return.
type CreateReturnRequest struct {
	OrderID uuid.UUID           `json:"orderId" validate:"required"`
	Reason  string              `json:"reason"`
	Items   []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReturnItemRequest represents a single returned item. Items with a zero
// quantity are excluded from the settlement computation.
type ReturnItemRequest struct {
	ProductID         uuid.UUID  `json:"productId" validate:"required"`
	Quantity          int        `json:"quantity" validate:"gte=0"`
	ExchangeProductID *uuid.UUID `json:"exchangeProductId,omitempty"`
}

// ReturnResponse represents the response payload for a settled return.
// DiscountCode is set when the settlement issued store credit.
type ReturnResponse struct {
	Return
	Items              []ReturnItem  `json:"items"`
	TotalReturnValue   Cents         `json:"totalReturnValue"`
	TotalExchangeValue Cents         `json:"totalExchangeValue"`
	DiscountCode       *DiscountCode `json:"discountCode,omitempty"`
}
