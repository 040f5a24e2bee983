package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockMovementRepository implements the StockMovementRepository interface using PostgreSQL.
type stockMovementRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockMovementRepository creates a new PostgreSQL-backed stock movement repository.
func NewStockMovementRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockMovementRepository {
	return &stockMovementRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock_movement").Logger(),
	}
}

// BeginTx starts a new store transaction.
func (r *stockMovementRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Insert records a stock movement within the provided transaction.
func (r *stockMovementRepository) Insert(ctx context.Context, tx Tx, movement *model.StockMovement) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stock_movements (id, product_id, product_name, sku, movement_type,
			quantity, applied_delta, reason, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = ptx.Exec(ctx, query,
		movement.ID,
		movement.ProductID,
		movement.ProductName,
		movement.SKU,
		movement.Type,
		movement.Quantity,
		movement.AppliedDelta,
		movement.Reason,
		movement.Notes,
		movement.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", movement.ProductID.String()).
			Str("movement_type", string(movement.Type)).
			Msg("failed to insert stock movement")
		return fmt.Errorf("failed to insert stock movement: %w", err)
	}

	r.logger.Debug().
		Str("movement_id", movement.ID.String()).
		Str("product_id", movement.ProductID.String()).
		Str("movement_type", string(movement.Type)).
		Int("applied_delta", movement.AppliedDelta).
		Msg("stock movement recorded")

	return nil
}

// List retrieves stock movements with pagination, newest first, optionally
// filtered by product.
func (r *stockMovementRepository) List(ctx context.Context, productID *uuid.UUID, limit, offset int) ([]model.StockMovement, error) {
	query := `
		SELECT id, product_id, product_name, sku, movement_type,
			quantity, applied_delta, reason, notes, created_at
		FROM stock_movements
		WHERE $3::uuid IS NULL OR product_id = $3
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query stock movements")
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.ProductName,
			&m.SKU,
			&m.Type,
			&m.Quantity,
			&m.AppliedDelta,
			&m.Reason,
			&m.Notes,
			&m.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock movement row")
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock movement rows")
		return nil, fmt.Errorf("error iterating stock movements: %w", err)
	}

	return movements, nil
}
