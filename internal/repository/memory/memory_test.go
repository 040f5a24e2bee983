package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(sku, name string, price model.Cents, stock int) *model.Product {
	now := time.Now()
	return &model.Product{
		ID:            uuid.New(),
		SKU:           sku,
		Name:          name,
		Category:      "test",
		Price:         price,
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestProductStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewProductRepository(store)

	p := newProduct("SKU-001", "Widget", 1050, 10)
	require.NoError(t, repo.Create(ctx, p))

	t.Run("duplicate SKU rejected", func(t *testing.T) {
		dup := newProduct("SKU-001", "Other Widget", 2000, 5)
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, model.ErrDuplicateSKU)
	})

	t.Run("get by ID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, model.Cents(1050), got.Price)
	})

	t.Run("get by ID not found", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get by SKU", func(t *testing.T) {
		got, err := repo.GetBySKU(ctx, "SKU-001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("update changes SKU index", func(t *testing.T) {
		updated := *p
		updated.SKU = "SKU-002"
		updated.Price = 1150
		require.NoError(t, repo.Update(ctx, &updated))

		old, err := repo.GetBySKU(ctx, "SKU-001")
		require.NoError(t, err)
		assert.Nil(t, old)

		got, err := repo.GetBySKU(ctx, "SKU-002")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.Cents(1150), got.Price)
	})

	t.Run("update collides with existing SKU", func(t *testing.T) {
		other := newProduct("SKU-003", "Gadget", 500, 3)
		require.NoError(t, repo.Create(ctx, other))

		collide := *other
		collide.SKU = "SKU-002"
		err := repo.Update(ctx, &collide)
		assert.ErrorIs(t, err, model.ErrDuplicateSKU)
	})

	t.Run("delete", func(t *testing.T) {
		found, err := repo.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = repo.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestProductStore_ListSearchAndPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewProductRepository(store)

	require.NoError(t, repo.Create(ctx, newProduct("SKU-APPLE", "Apple Juice", 300, 5)))
	require.NoError(t, repo.Create(ctx, newProduct("SKU-BREAD", "Bread Loaf", 250, 8)))
	require.NoError(t, repo.Create(ctx, newProduct("SKU-CANDY", "Candy Bar", 150, 20)))

	t.Run("sorted by name", func(t *testing.T) {
		products, err := repo.List(ctx, 50, 0, "")
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Apple Juice", products[0].Name)
		assert.Equal(t, "Bread Loaf", products[1].Name)
		assert.Equal(t, "Candy Bar", products[2].Name)
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		products, err := repo.List(ctx, 50, 0, "bread")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "SKU-BREAD", products[0].SKU)
	})

	t.Run("search matches SKU", func(t *testing.T) {
		products, err := repo.List(ctx, 50, 0, "sku-candy")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Candy Bar", products[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		products, err := repo.List(ctx, 2, 0, "")
		require.NoError(t, err)
		assert.Len(t, products, 2)

		products, err = repo.List(ctx, 2, 2, "")
		require.NoError(t, err)
		assert.Len(t, products, 1)

		products, err = repo.List(ctx, 2, 10, "")
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestTx_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	products := NewProductRepository(store)
	returns := NewReturnRepository(store)
	movements := NewStockMovementRepository(store)

	p := newProduct("SKU-100", "Widget", 1000, 7)
	require.NoError(t, products.Create(ctx, p))

	tx, err := returns.BeginTx(ctx)
	require.NoError(t, err)

	ret := &model.Return{
		ID:           uuid.New(),
		ReturnNumber: "RET-1",
		OrderID:      uuid.New(),
		Status:       model.ReturnStatusCompleted,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, returns.CreateReturn(ctx, tx, ret))
	require.NoError(t, returns.CreateReturnItems(ctx, tx, []model.ReturnItem{
		{ID: uuid.New(), ReturnID: ret.ID, ProductID: p.ID, Quantity: 2},
	}))
	require.NoError(t, movements.Insert(ctx, tx, &model.StockMovement{
		ID:           uuid.New(),
		ProductID:    p.ID,
		Type:         model.MovementTypeIn,
		Quantity:     2,
		AppliedDelta: 2,
		CreatedAt:    time.Now(),
	}))
	require.NoError(t, products.UpdateStock(ctx, tx, p.ID, 9))

	require.NoError(t, tx.Rollback(ctx))

	gotReturn, gotItems, err := returns.GetByID(ctx, ret.ID)
	require.NoError(t, err)
	assert.Nil(t, gotReturn)
	assert.Nil(t, gotItems)

	history, err := movements.List(ctx, nil, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	gotProduct, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, gotProduct)
	assert.Equal(t, 7, gotProduct.StockQuantity)
}

func TestTx_CommitPersists(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	products := NewProductRepository(store)
	movements := NewStockMovementRepository(store)

	p := newProduct("SKU-200", "Widget", 1000, 3)
	require.NoError(t, products.Create(ctx, p))

	tx, err := movements.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, movements.Insert(ctx, tx, &model.StockMovement{
		ID:           uuid.New(),
		ProductID:    p.ID,
		Type:         model.MovementTypeIn,
		Quantity:     4,
		AppliedDelta: 4,
		CreatedAt:    time.Now(),
	}))
	require.NoError(t, products.UpdateStock(ctx, tx, p.ID, 7))
	require.NoError(t, tx.Commit(ctx))

	// Rollback after commit must be a harmless no-op.
	require.NoError(t, tx.Rollback(ctx))

	gotProduct, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, gotProduct)
	assert.Equal(t, 7, gotProduct.StockQuantity)

	history, err := movements.List(ctx, &p.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMovementStore_ListNewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	movements := NewStockMovementRepository(store)

	productA := uuid.New()
	productB := uuid.New()

	for i, pid := range []uuid.UUID{productA, productB, productA} {
		tx, err := movements.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, movements.Insert(ctx, tx, &model.StockMovement{
			ID:        uuid.New(),
			ProductID: pid,
			Type:      model.MovementTypeIn,
			Quantity:  i + 1,
			CreatedAt: time.Now(),
		}))
		require.NoError(t, tx.Commit(ctx))
	}

	all, err := movements.List(ctx, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Quantity)
	assert.Equal(t, 1, all[2].Quantity)

	filtered, err := movements.List(ctx, &productB, 50, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Quantity)
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	orders := NewOrderRepository(store)

	order := &model.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-1",
		Status:      model.OrderStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	tx, err := orders.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, orders.CreateOrder(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))

	updated, err := orders.UpdateStatus(ctx, order.ID, model.OrderStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.OrderStatusCompleted, updated.Status)

	missing, err := orders.UpdateStatus(ctx, uuid.New(), model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// Redeeming concurrently against one code must never over-redeem: the
// transaction holds the store for the whole read-modify-write.
func TestCreditStore_ConcurrentRedemptionSerializes(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	codes := NewDiscountCodeRepository(store)

	code := &model.DiscountCode{
		ID:            uuid.New(),
		Code:          "CREDIT-1-ABCDEF",
		CustomerEmail: "customer@example.com",
		Amount:        2000,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, codes.Create(ctx, code))

	const workers = 10
	const chunk = model.Cents(500)

	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tx, err := codes.BeginTx(ctx)
			if err != nil {
				results <- false
				return
			}
			defer tx.Rollback(ctx)

			dc, err := codes.GetByCodeForUpdate(ctx, tx, code.Code)
			if err != nil || dc == nil || dc.Amount < chunk {
				results <- false
				return
			}

			remaining := dc.Amount - chunk
			if remaining == 0 {
				if err := codes.DeleteTx(ctx, tx, dc.ID); err != nil {
					results <- false
					return
				}
			} else {
				if err := codes.UpdateAmount(ctx, tx, dc.ID, remaining); err != nil {
					results <- false
					return
				}
			}

			results <- tx.Commit(ctx) == nil
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}

	// 2000 cents in 500-cent chunks: exactly four redemptions can win.
	assert.Equal(t, 4, succeeded)

	gone, err := codes.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreditStore_ListFiltersByEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	codes := NewDiscountCodeRepository(store)

	base := time.Now()
	for i, email := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		require.NoError(t, codes.Create(ctx, &model.DiscountCode{
			ID:            uuid.New(),
			Code:          "CREDIT-" + uuid.NewString(),
			CustomerEmail: email,
			Amount:        1000,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := codes.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	filtered, err := codes.List(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}
