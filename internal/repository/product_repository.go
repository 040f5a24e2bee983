package repository

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category, price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.SKU,
		product.Name,
		product.Category,
		product.Price,
		product.StockQuantity,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("sku", product.SKU).Msg("duplicate SKU rejected")
			return model.ErrDuplicateSKU
		}
		r.logger.Error().Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Str("sku", product.SKU).
		Msg("product created successfully")

	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, sku, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetBySKU retrieves a single product by its SKU.
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	query := `
		SELECT id, sku, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE sku = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("sku", sku).Msg("failed to query product by SKU")
		return nil, fmt.Errorf("failed to query product by SKU: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, sku, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves products with pagination, optionally filtered by a
// case-insensitive match on name or SKU.
func (r *productRepository) List(ctx context.Context, limit, offset int, search string) ([]model.Product, error) {
	query := `
		SELECT id, sku, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE $3 = '' OR name ILIKE '%' || $3 || '%' OR sku ILIKE '%' || $3 || '%'
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset, search)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update persists changes to an existing product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, category = $4, price = $5, stock_quantity = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID,
		product.SKU,
		product.Name,
		product.Category,
		product.Price,
		product.StockQuantity,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("sku", product.SKU).Msg("duplicate SKU rejected")
			return model.ErrDuplicateSKU
		}
		r.logger.Error().Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM products WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetForUpdate retrieves a product within the transaction, locking the row
// until the transaction ends.
func (r *productRepository) GetForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*model.Product, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, sku, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p model.Product
	err = ptx.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product row")
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}

	return &p, nil
}

// UpdateStock sets the product's stock quantity within the transaction.
func (r *productRepository) UpdateStock(ctx context.Context, tx Tx, id uuid.UUID, stock int) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET stock_quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := ptx.Exec(ctx, query, id, stock)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update stock")
		return fmt.Errorf("failed to update stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().
		Str("product_id", id.String()).
		Int("stock_quantity", stock).
		Msg("stock updated")

	return nil
}
