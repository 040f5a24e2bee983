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

// testMovement builds a ledger entry for the given product.
func testMovement(p model.Product, mtype model.MovementType, qty, delta int, reason string) *model.StockMovement {
	return &model.StockMovement{
		ID:           uuid.New(),
		ProductID:    p.ID,
		ProductName:  p.Name,
		SKU:          p.SKU,
		Type:         mtype,
		Quantity:     qty,
		AppliedDelta: delta,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
}

func TestStockMovementRepository_Insert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewStockMovementRepository(pool, logger)

	ctx := context.Background()
	widget := testProduct("WID-001", "Blue Widget", "widgets", 1000, 10)
	seedProducts(t, pool, []model.Product{widget})

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	movement := testMovement(widget, model.MovementTypeIn, 5, 5, "restock")
	movement.Notes = "weekly delivery"

	err = repo.Insert(ctx, tx, movement)
	require.NoError(t, err)

	require.NoError(t, tx.Commit(ctx))

	movements, err := repo.List(ctx, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, movement.ID, movements[0].ID)
	assert.Equal(t, widget.ID, movements[0].ProductID)
	assert.Equal(t, widget.Name, movements[0].ProductName)
	assert.Equal(t, widget.SKU, movements[0].SKU)
	assert.Equal(t, model.MovementTypeIn, movements[0].Type)
	assert.Equal(t, 5, movements[0].Quantity)
	assert.Equal(t, 5, movements[0].AppliedDelta)
	assert.Equal(t, "restock", movements[0].Reason)
	assert.Equal(t, "weekly delivery", movements[0].Notes)
}

func TestStockMovementRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewStockMovementRepository(pool, logger)

	ctx := context.Background()
	now := time.Now()

	widget := testProduct("WID-001", "Blue Widget", "widgets", 1000, 10)
	gadget := testProduct("GAD-001", "Green Gadget", "gadgets", 2000, 10)
	seedProducts(t, pool, []model.Product{widget, gadget})

	oldest := testMovement(widget, model.MovementTypeIn, 5, 5, "restock")
	oldest.CreatedAt = now.Add(-2 * time.Hour)
	middle := testMovement(gadget, model.MovementTypeOut, 2, -2, model.MovementReasonSale)
	middle.CreatedAt = now.Add(-1 * time.Hour)
	newest := testMovement(widget, model.MovementTypeAdjustment, 7, -3, "stocktake")
	newest.CreatedAt = now

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	for _, movement := range []*model.StockMovement{oldest, middle, newest} {
		require.NoError(t, repo.Insert(ctx, tx, movement))
	}
	require.NoError(t, tx.Commit(ctx))

	t.Run("all movements newest first", func(t *testing.T) {
		movements, err := repo.List(ctx, nil, 10, 0)

		require.NoError(t, err)
		require.Len(t, movements, 3)
		assert.Equal(t, newest.ID, movements[0].ID)
		assert.Equal(t, middle.ID, movements[1].ID)
		assert.Equal(t, oldest.ID, movements[2].ID)
	})

	t.Run("filtered by product", func(t *testing.T) {
		movements, err := repo.List(ctx, &widget.ID, 10, 0)

		require.NoError(t, err)
		require.Len(t, movements, 2)
		for _, movement := range movements {
			assert.Equal(t, widget.ID, movement.ProductID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		movements, err := repo.List(ctx, nil, 2, 0)
		require.NoError(t, err)
		assert.Len(t, movements, 2)

		movements, err = repo.List(ctx, nil, 2, 2)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})

	t.Run("no movements for unknown product", func(t *testing.T) {
		unknown := uuid.New()

		movements, err := repo.List(ctx, &unknown, 10, 0)

		require.NoError(t, err)
		assert.Empty(t, movements)
	})
}
