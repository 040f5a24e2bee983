package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus enumerates the lifecycle states of an order. Status is the
// only mutable field after creation.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order. Items are immutable once created and
// their unit prices and subtotals are frozen at order time.
type Order struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	OrderNumber   string      `json:"orderNumber" db:"order_number"`
	CustomerName  string      `json:"customerName" db:"customer_name"`
	CustomerEmail *string     `json:"customerEmail,omitempty" db:"customer_email"`
	Status        OrderStatus `json:"status" db:"status"`
	TotalAmount   Cents       `json:"totalAmount" db:"total_amount"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   uuid.UUID `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	SKU         string    `json:"sku" db:"sku"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   Cents     `json:"unitPrice" db:"unit_price"`
	Subtotal    Cents     `json:"subtotal" db:"subtotal"`
}

// CreateOrderRequest represents the request payload for creating an order.
// When DiscountCode is set, AmountUsed is redeemed against it after the
// order has been persisted.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName" validate:"required"`
	CustomerEmail *string            `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountCode  *string            `json:"discountCode,omitempty"`
	AmountUsed    *Cents             `json:"amountUsed,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

// Credit application outcomes reported on order creation. The redemption
// step runs after the order is persisted and is never rolled back.
const (
	CreditStatusApplied = "applied"
	CreditStatusFailed  = "failed"
)

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Items         []OrderItem `json:"items"`
	CreditStatus  string      `json:"creditStatus,omitempty"`
	CreditWarning string      `json:"creditWarning,omitempty"`
}

// UpdateOrderStatusRequest represents the request payload for a status change.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}
