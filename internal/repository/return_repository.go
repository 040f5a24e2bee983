package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// returnRepository implements the ReturnRepository interface using PostgreSQL.
type returnRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReturnRepository creates a new PostgreSQL-backed return repository.
func NewReturnRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReturnRepository {
	return &returnRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "return").Logger(),
	}
}

// BeginTx starts a new store transaction.
func (r *returnRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateReturn inserts a new return within the provided transaction.
func (r *returnRepository) CreateReturn(ctx context.Context, tx Tx, ret *model.Return) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO returns (id, return_number, order_id, order_number, customer_name, customer_email,
			status, reason, refund_amount, credit_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = ptx.Exec(ctx, query,
		ret.ID,
		ret.ReturnNumber,
		ret.OrderID,
		ret.OrderNumber,
		ret.CustomerName,
		ret.CustomerEmail,
		ret.Status,
		ret.Reason,
		ret.RefundAmount,
		ret.CreditAmount,
		ret.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("return_id", ret.ID.String()).
			Msg("failed to create return")
		return fmt.Errorf("failed to create return: %w", err)
	}

	r.logger.Debug().
		Str("return_id", ret.ID.String()).
		Str("return_number", ret.ReturnNumber).
		Msg("return created successfully")

	return nil
}

// CreateReturnItems inserts multiple return items within the provided transaction.
func (r *returnRepository) CreateReturnItems(ctx context.Context, tx Tx, items []model.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}

	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO return_items (id, return_id, product_id, product_name, sku, quantity,
			unit_price, subtotal, exchange_product_id, exchange_product_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.ReturnID,
			item.ProductID,
			item.ProductName,
			item.SKU,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.ExchangeProductID,
			item.ExchangeProductName,
		)
	}

	results := ptx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("return_id", items[i].ReturnID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create return item")
			return fmt.Errorf("failed to create return item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("return items created successfully")

	return nil
}

// GetByID retrieves a return by its ID along with its items.
func (r *returnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Return, []model.ReturnItem, error) {
	returnQuery := `
		SELECT id, return_number, order_id, order_number, customer_name, customer_email,
			status, reason, refund_amount, credit_amount, created_at
		FROM returns
		WHERE id = $1
	`

	var ret model.Return
	err := r.pool.QueryRow(ctx, returnQuery, id).Scan(
		&ret.ID,
		&ret.ReturnNumber,
		&ret.OrderID,
		&ret.OrderNumber,
		&ret.CustomerName,
		&ret.CustomerEmail,
		&ret.Status,
		&ret.Reason,
		&ret.RefundAmount,
		&ret.CreditAmount,
		&ret.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("return_id", id.String()).Msg("return not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("return_id", id.String()).Msg("failed to query return")
		return nil, nil, fmt.Errorf("failed to query return: %w", err)
	}

	itemsQuery := `
		SELECT id, return_id, product_id, product_name, sku, quantity,
			unit_price, subtotal, exchange_product_id, exchange_product_name
		FROM return_items
		WHERE return_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("return_id", id.String()).
			Msg("failed to query return items")
		return nil, nil, fmt.Errorf("failed to query return items: %w", err)
	}
	defer rows.Close()

	var items []model.ReturnItem
	for rows.Next() {
		var item model.ReturnItem
		err := rows.Scan(
			&item.ID,
			&item.ReturnID,
			&item.ProductID,
			&item.ProductName,
			&item.SKU,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.ExchangeProductID,
			&item.ExchangeProductName,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan return item row")
			return nil, nil, fmt.Errorf("failed to scan return item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating return item rows")
		return nil, nil, fmt.Errorf("error iterating return items: %w", err)
	}

	return &ret, items, nil
}

// List retrieves returns with pagination, newest first.
func (r *returnRepository) List(ctx context.Context, limit, offset int) ([]model.Return, error) {
	query := `
		SELECT id, return_number, order_id, order_number, customer_name, customer_email,
			status, reason, refund_amount, credit_amount, created_at
		FROM returns
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query returns")
		return nil, fmt.Errorf("failed to query returns: %w", err)
	}
	defer rows.Close()

	var returns []model.Return
	for rows.Next() {
		var ret model.Return
		err := rows.Scan(
			&ret.ID,
			&ret.ReturnNumber,
			&ret.OrderID,
			&ret.OrderNumber,
			&ret.CustomerName,
			&ret.CustomerEmail,
			&ret.Status,
			&ret.Reason,
			&ret.RefundAmount,
			&ret.CreditAmount,
			&ret.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan return row")
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		returns = append(returns, ret)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating return rows")
		return nil, fmt.Errorf("error iterating returns: %w", err)
	}

	return returns, nil
}
