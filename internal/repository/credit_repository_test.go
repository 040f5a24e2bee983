package repository

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDiscountCode builds a discount code with a fresh ID for seeding.
func testDiscountCode(code, email string, amount model.Cents, expiresAt *time.Time) *model.DiscountCode {
	return &model.DiscountCode{
		ID:            uuid.New(),
		Code:          code,
		CustomerEmail: email,
		Amount:        amount,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now(),
	}
}

func TestDiscountCodeRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	expiresAt := time.Now().AddDate(0, 6, 0)
	code := testDiscountCode("CREDIT-1001-ABC123", "ada@example.com", 2000, &expiresAt)

	err := repo.Create(ctx, code)
	require.NoError(t, err)

	stored, err := repo.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, code.ID, stored.ID)
	assert.Equal(t, code.Code, stored.Code)
	assert.Equal(t, code.CustomerEmail, stored.CustomerEmail)
	assert.Equal(t, model.Cents(2000), stored.Amount)
	assert.False(t, stored.IsUsed)
	require.NotNil(t, stored.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *stored.ExpiresAt, time.Second)
}

func TestDiscountCodeRepository_GetByCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	code := testDiscountCode("CREDIT-2001-XYZ789", "ada@example.com", 1500, nil)
	require.NoError(t, repo.Create(ctx, code))

	t.Run("code exists", func(t *testing.T) {
		stored, err := repo.GetByCode(ctx, code.Code)

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, code.ID, stored.ID)
		assert.Nil(t, stored.ExpiresAt)
	})

	t.Run("code does not exist", func(t *testing.T) {
		stored, err := repo.GetByCode(ctx, "CREDIT-0000-MISSING")

		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestDiscountCodeRepository_UpdateAmountWithinTransaction(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	code := testDiscountCode("CREDIT-3001-LOCKME", "grace@example.com", 2000, nil)
	require.NoError(t, repo.Create(ctx, code))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	locked, err := repo.GetByCodeForUpdate(ctx, tx, code.Code)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, model.Cents(2000), locked.Amount)

	missing, err := repo.GetByCodeForUpdate(ctx, tx, "CREDIT-0000-MISSING")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.UpdateAmount(ctx, tx, code.ID, 500)
	require.NoError(t, err)

	err = repo.UpdateAmount(ctx, tx, uuid.New(), 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDiscountCodeNotFound)

	require.NoError(t, tx.Commit(ctx))

	stored, err := repo.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.Cents(500), stored.Amount)
}

func TestDiscountCodeRepository_DeleteTx(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	code := testDiscountCode("CREDIT-4001-GONE", "ada@example.com", 800, nil)
	require.NoError(t, repo.Create(ctx, code))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	err = repo.DeleteTx(ctx, tx, code.ID)
	require.NoError(t, err)

	err = repo.DeleteTx(ctx, tx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDiscountCodeNotFound)

	require.NoError(t, tx.Commit(ctx))

	stored, err := repo.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDiscountCodeRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	now := time.Now()

	oldest := testDiscountCode("CREDIT-5001-A", "ada@example.com", 100, nil)
	oldest.CreatedAt = now.Add(-2 * time.Hour)
	middle := testDiscountCode("CREDIT-5002-B", "grace@example.com", 200, nil)
	middle.CreatedAt = now.Add(-1 * time.Hour)
	newest := testDiscountCode("CREDIT-5003-C", "ada@example.com", 300, nil)
	newest.CreatedAt = now

	for _, code := range []*model.DiscountCode{oldest, middle, newest} {
		require.NoError(t, repo.Create(ctx, code))
	}

	t.Run("all codes newest first", func(t *testing.T) {
		codes, err := repo.List(ctx, "")

		require.NoError(t, err)
		require.Len(t, codes, 3)
		assert.Equal(t, newest.ID, codes[0].ID)
		assert.Equal(t, middle.ID, codes[1].ID)
		assert.Equal(t, oldest.ID, codes[2].ID)
	})

	t.Run("filtered by customer email", func(t *testing.T) {
		codes, err := repo.List(ctx, "ada@example.com")

		require.NoError(t, err)
		require.Len(t, codes, 2)
		for _, code := range codes {
			assert.Equal(t, "ada@example.com", code.CustomerEmail)
		}
	})

	t.Run("no codes for unknown email", func(t *testing.T) {
		codes, err := repo.List(ctx, "nobody@example.com")

		require.NoError(t, err)
		assert.Empty(t, codes)
	})
}

func TestDiscountCodeRepository_Delete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewDiscountCodeRepository(pool, logger)

	ctx := context.Background()
	code := testDiscountCode("CREDIT-6001-DEL", "ada@example.com", 900, nil)
	require.NoError(t, repo.Create(ctx, code))

	deleted, err := repo.Delete(ctx, code.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, code.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
