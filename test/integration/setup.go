package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	// Create connection pool through the production pool builder
	dbConfig := config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing. Monetary columns are
// BIGINT cent amounts.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL CHECK (price >= 0),
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL,
			customer_email TEXT,
			status TEXT NOT NULL,
			total_amount BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL,
			product_name TEXT NOT NULL,
			sku TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price BIGINT NOT NULL,
			subtotal BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

		CREATE TABLE IF NOT EXISTS returns (
			id UUID PRIMARY KEY,
			return_number TEXT NOT NULL UNIQUE,
			order_id UUID NOT NULL,
			order_number TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			refund_amount BIGINT NOT NULL DEFAULT 0,
			credit_amount BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS return_items (
			id UUID PRIMARY KEY,
			return_id UUID NOT NULL REFERENCES returns(id) ON DELETE CASCADE,
			product_id UUID NOT NULL,
			product_name TEXT NOT NULL,
			sku TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price BIGINT NOT NULL,
			subtotal BIGINT NOT NULL,
			exchange_product_id UUID,
			exchange_product_name TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_return_items_return_id ON return_items(return_id);

		CREATE TABLE IF NOT EXISTS stock_movements (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL,
			product_name TEXT NOT NULL,
			sku TEXT NOT NULL,
			movement_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			applied_delta INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_stock_movements_product_id ON stock_movements(product_id);

		CREATE TABLE IF NOT EXISTS discount_codes (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			customer_email TEXT NOT NULL,
			amount BIGINT NOT NULL CHECK (amount > 0),
			is_used BOOLEAN NOT NULL DEFAULT FALSE,
			used_at TIMESTAMPTZ,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test product data and returns the seeded rows so
// callers can reference their generated IDs.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) []model.Product {
	t.Helper()

	ctx := context.Background()
	now := time.Now()

	products := []model.Product{
		{ID: uuid.New(), SKU: "SKU-001", Name: "Test Product 1", Category: "Category A", Price: 1000, StockQuantity: 10, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), SKU: "SKU-002", Name: "Test Product 2", Category: "Category B", Price: 2000, StockQuantity: 10, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), SKU: "SKU-003", Name: "Test Product 3", Category: "Category A", Price: 3000, StockQuantity: 10, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), SKU: "SKU-004", Name: "Test Product 4", Category: "Category C", Price: 4000, StockQuantity: 10, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), SKU: "SKU-005", Name: "Test Product 5", Category: "Category B", Price: 5000, StockQuantity: 10, CreatedAt: now, UpdatedAt: now},
	}

	query := `
		INSERT INTO products (id, sku, name, category, price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.ID, p.SKU, p.Name, p.Category, p.Price, p.StockQuantity, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.SKU, err)
		}
	}

	return products
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"return_items",
		"returns",
		"order_items",
		"orders",
		"stock_movements",
		"discount_codes",
		"products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
