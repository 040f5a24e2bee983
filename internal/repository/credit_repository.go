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

// discountCodeRepository implements the DiscountCodeRepository interface using PostgreSQL.
type discountCodeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountCodeRepository creates a new PostgreSQL-backed discount code repository.
func NewDiscountCodeRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountCodeRepository {
	return &discountCodeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount_code").Logger(),
	}
}

// BeginTx starts a new store transaction.
func (r *discountCodeRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new discount code.
func (r *discountCodeRepository) Create(ctx context.Context, code *model.DiscountCode) error {
	query := `
		INSERT INTO discount_codes (id, code, customer_email, amount, is_used, used_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		code.ID,
		code.Code,
		code.CustomerEmail,
		code.Amount,
		code.IsUsed,
		code.UsedAt,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("code", code.Code).
			Msg("failed to create discount code")
		return fmt.Errorf("failed to create discount code: %w", err)
	}

	r.logger.Debug().
		Str("code", code.Code).
		Str("customer_email", code.CustomerEmail).
		Msg("discount code created successfully")

	return nil
}

// GetByCode retrieves a discount code by its code string.
func (r *discountCodeRepository) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	query := `
		SELECT id, code, customer_email, amount, is_used, used_at, expires_at, created_at
		FROM discount_codes
		WHERE code = $1
	`

	var dc model.DiscountCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&dc.ID, &dc.Code, &dc.CustomerEmail, &dc.Amount, &dc.IsUsed, &dc.UsedAt, &dc.ExpiresAt, &dc.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("discount code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query discount code")
		return nil, fmt.Errorf("failed to query discount code: %w", err)
	}

	return &dc, nil
}

// GetByCodeForUpdate retrieves a discount code within the transaction,
// locking the row until the transaction ends.
func (r *discountCodeRepository) GetByCodeForUpdate(ctx context.Context, tx Tx, code string) (*model.DiscountCode, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, code, customer_email, amount, is_used, used_at, expires_at, created_at
		FROM discount_codes
		WHERE code = $1
		FOR UPDATE
	`

	var dc model.DiscountCode
	err = ptx.QueryRow(ctx, query, code).Scan(
		&dc.ID, &dc.Code, &dc.CustomerEmail, &dc.Amount, &dc.IsUsed, &dc.UsedAt, &dc.ExpiresAt, &dc.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("discount code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock discount code row")
		return nil, fmt.Errorf("failed to lock discount code row: %w", err)
	}

	return &dc, nil
}

// UpdateAmount sets the remaining balance of a discount code within the transaction.
func (r *discountCodeRepository) UpdateAmount(ctx context.Context, tx Tx, id uuid.UUID, amount model.Cents) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE discount_codes
		SET amount = $2
		WHERE id = $1
	`

	tag, err := ptx.Exec(ctx, query, id, amount)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_code_id", id.String()).Msg("failed to update discount code amount")
		return fmt.Errorf("failed to update discount code amount: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrDiscountCodeNotFound
	}

	r.logger.Debug().
		Str("discount_code_id", id.String()).
		Str("amount", amount.String()).
		Msg("discount code balance updated")

	return nil
}

// DeleteTx removes a discount code within the transaction.
func (r *discountCodeRepository) DeleteTx(ctx context.Context, tx Tx, id uuid.UUID) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `DELETE FROM discount_codes WHERE id = $1`

	tag, err := ptx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_code_id", id.String()).Msg("failed to delete discount code")
		return fmt.Errorf("failed to delete discount code: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrDiscountCodeNotFound
	}

	r.logger.Debug().
		Str("discount_code_id", id.String()).
		Msg("discount code deleted")

	return nil
}

// List retrieves discount codes, optionally filtered by customer email, newest first.
func (r *discountCodeRepository) List(ctx context.Context, customerEmail string) ([]model.DiscountCode, error) {
	query := `
		SELECT id, code, customer_email, amount, is_used, used_at, expires_at, created_at
		FROM discount_codes
		WHERE $1 = '' OR customer_email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, customerEmail)
	if err != nil {
		r.logger.Error().Err(err).
			Str("customer_email", customerEmail).
			Msg("failed to query discount codes")
		return nil, fmt.Errorf("failed to query discount codes: %w", err)
	}
	defer rows.Close()

	var codes []model.DiscountCode
	for rows.Next() {
		var dc model.DiscountCode
		err := rows.Scan(&dc.ID, &dc.Code, &dc.CustomerEmail, &dc.Amount, &dc.IsUsed, &dc.UsedAt, &dc.ExpiresAt, &dc.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan discount code row")
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		codes = append(codes, dc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating discount code rows")
		return nil, fmt.Errorf("error iterating discount codes: %w", err)
	}

	return codes, nil
}

// Delete removes a discount code.
func (r *discountCodeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM discount_codes WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_code_id", id.String()).Msg("failed to delete discount code")
		return false, fmt.Errorf("failed to delete discount code: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
