package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Tx represents an in-flight store transaction. Repositories that expose
// BeginTx return one, and transactional methods require one. The PostgreSQL
// implementations are backed by pgx.Tx; the in-memory store provides its own.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// asPgxTx unwraps a Tx created by a PostgreSQL repository.
func asPgxTx(tx Tx) (pgx.Tx, error) {
	ptx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, fmt.Errorf("transaction does not belong to the postgres store")
	}
	return ptx, nil
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Create inserts a new product. Returns model.ErrDuplicateSKU if the SKU
	// is already taken.
	Create(ctx context.Context, product *model.Product) error

	// GetByID retrieves a single product by its ID. Returns (nil, nil) when
	// the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySKU retrieves a single product by its SKU. Returns (nil, nil) when
	// the product does not exist.
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// List retrieves products with pagination, optionally filtered by a
	// case-insensitive match on name or SKU.
	List(ctx context.Context, limit, offset int, search string) ([]model.Product, error)

	// Update persists changes to an existing product. Returns
	// model.ErrDuplicateSKU if the new SKU collides with another product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Returns false when the product does not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// GetForUpdate retrieves a product within the transaction, locking the
	// row until the transaction ends. Returns (nil, nil) when the product
	// does not exist.
	GetForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*model.Product, error)

	// UpdateStock sets the product's stock quantity within the transaction.
	UpdateStock(ctx context.Context, tx Tx, id uuid.UUID, stock int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new store transaction.
	BeginTx(ctx context.Context) (Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns
	// (nil, nil, nil) when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves orders with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus sets the order's status. Returns (nil, nil) when the order
	// does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// ReturnRepository defines the interface for return data access operations.
type ReturnRepository interface {
	// BeginTx starts a new store transaction.
	BeginTx(ctx context.Context) (Tx, error)

	// CreateReturn inserts a new return within the provided transaction.
	CreateReturn(ctx context.Context, tx Tx, ret *model.Return) error

	// CreateReturnItems inserts multiple return items within the provided transaction.
	CreateReturnItems(ctx context.Context, tx Tx, items []model.ReturnItem) error

	// GetByID retrieves a return by its ID along with its items. Returns
	// (nil, nil, nil) when the return does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Return, []model.ReturnItem, error)

	// List retrieves returns with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Return, error)
}

// StockMovementRepository defines the interface for stock movement data access operations.
type StockMovementRepository interface {
	// BeginTx starts a new store transaction.
	BeginTx(ctx context.Context) (Tx, error)

	// Insert records a stock movement within the provided transaction.
	Insert(ctx context.Context, tx Tx, movement *model.StockMovement) error

	// List retrieves stock movements with pagination, newest first,
	// optionally filtered by product.
	List(ctx context.Context, productID *uuid.UUID, limit, offset int) ([]model.StockMovement, error)
}

// DiscountCodeRepository defines the interface for discount code data access operations.
type DiscountCodeRepository interface {
	// BeginTx starts a new store transaction.
	BeginTx(ctx context.Context) (Tx, error)

	// Create inserts a new discount code.
	Create(ctx context.Context, code *model.DiscountCode) error

	// GetByCode retrieves a discount code by its code string. Returns
	// (nil, nil) when the code does not exist.
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)

	// GetByCodeForUpdate retrieves a discount code within the transaction,
	// locking the row until the transaction ends. Returns (nil, nil) when the
	// code does not exist.
	GetByCodeForUpdate(ctx context.Context, tx Tx, code string) (*model.DiscountCode, error)

	// UpdateAmount sets the remaining balance of a discount code within the
	// transaction.
	UpdateAmount(ctx context.Context, tx Tx, id uuid.UUID, amount model.Cents) error

	// DeleteTx removes a discount code within the transaction.
	DeleteTx(ctx context.Context, tx Tx, id uuid.UUID) error

	// List retrieves discount codes, optionally filtered by customer email,
	// newest first.
	List(ctx context.Context, customerEmail string) ([]model.DiscountCode, error)

	// Delete removes a discount code. Returns false when the code does not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
