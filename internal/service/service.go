package service

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalog management.
type ProductService interface {
	// Create adds a product to the catalog.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// GetByID retrieves a single product by ID, consulting the cache first.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySKU retrieves a single product by SKU.
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)

	// List retrieves products with pagination and optional name/SKU search.
	List(ctx context.Context, limit, offset int, search string) ([]model.Product, error)

	// Update modifies product fields. Existing order subtotals are never
	// affected by price changes.
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)

	// Delete removes a product from the catalog.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create persists a new order, freezing unit prices from the current
	// catalog and decrementing stock, then optionally redeems store credit.
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves orders with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus changes the order status, the only mutable order field.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// ReturnService defines the return settlement operations.
type ReturnService interface {
	// Process settles a return: computes refund/credit amounts, persists the
	// return with its items, restocks returned products, and issues store
	// credit when due.
	Process(ctx context.Context, req *model.CreateReturnRequest) (*model.ReturnResponse, error)

	// GetByID retrieves a settled return with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnResponse, error)

	// List retrieves returns with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Return, error)
}

// CreditService defines store credit ledger operations.
type CreditService interface {
	// Issue creates a new balance-bearing discount code.
	Issue(ctx context.Context, customerEmail string, amount model.Cents, expiresAt *time.Time) (*model.DiscountCode, error)

	// Redeem consumes part or all of a code's balance. The code is deleted
	// when the balance reaches exactly zero.
	Redeem(ctx context.Context, code string, amountUsed model.Cents) (*model.RedeemCreditResponse, error)

	// List retrieves codes, optionally filtered by customer email.
	List(ctx context.Context, customerEmail string) ([]model.DiscountCode, error)

	// Delete removes a code unconditionally.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockService defines stock ledger operations.
type StockService interface {
	// ApplyMovement records a movement and mutates the product's stock
	// according to the movement type.
	ApplyMovement(ctx context.Context, req *model.CreateStockMovementRequest) (*model.StockMovement, error)

	// List retrieves movement history, newest first, optionally filtered by product.
	List(ctx context.Context, productID *uuid.UUID, limit, offset int) ([]model.StockMovement, error)
}
