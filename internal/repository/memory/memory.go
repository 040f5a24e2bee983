// Package memory provides a process-local implementation of the repository
// interfaces, selected with STORE_DRIVER=memory. It is intended for demos and
// development without a PostgreSQL instance; data does not survive restarts.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
)

// Store holds every collection behind a single mutex. A transaction takes the
// mutex for its whole lifetime and keeps an undo journal, so concurrent
// redemptions or stock updates cannot interleave and a rollback restores the
// exact prior state.
type Store struct {
	mu            sync.RWMutex
	products      map[uuid.UUID]model.Product
	productsBySKU map[string]uuid.UUID
	orders        map[uuid.UUID]model.Order
	orderItems    map[uuid.UUID][]model.OrderItem
	returns       map[uuid.UUID]model.Return
	returnItems   map[uuid.UUID][]model.ReturnItem
	movements     []model.StockMovement
	codes         map[uuid.UUID]model.DiscountCode
	codesByCode   map[string]uuid.UUID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products:      make(map[uuid.UUID]model.Product),
		productsBySKU: make(map[string]uuid.UUID),
		orders:        make(map[uuid.UUID]model.Order),
		orderItems:    make(map[uuid.UUID][]model.OrderItem),
		returns:       make(map[uuid.UUID]model.Return),
		returnItems:   make(map[uuid.UUID][]model.ReturnItem),
		movements:     make([]model.StockMovement, 0, 64),
		codes:         make(map[uuid.UUID]model.DiscountCode),
		codesByCode:   make(map[string]uuid.UUID),
	}
}

// memTx is a store-wide transaction. It holds the store mutex from BeginTx
// until Commit or Rollback; transactional methods must not re-lock.
type memTx struct {
	s    *Store
	undo []func()
	done bool
}

func (s *Store) begin() *memTx {
	s.mu.Lock()
	return &memTx{s: s}
}

// Commit finalizes the transaction and releases the store.
func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	t.done = true
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

// Rollback reverts journaled mutations in reverse order and releases the
// store. Calling Rollback after Commit is a no-op, matching pgx semantics so
// callers can defer it unconditionally.
func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

// tx unwraps a repository.Tx issued by this store.
func (s *Store) tx(tx repository.Tx) (*memTx, error) {
	mtx, ok := tx.(*memTx)
	if !ok || mtx.s != s {
		return nil, fmt.Errorf("transaction does not belong to the memory store")
	}
	if mtx.done {
		return nil, fmt.Errorf("transaction already closed")
	}
	return mtx, nil
}

func matchesSearch(p model.Product, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.SKU), needle)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// newestFirst orders by creation time descending, breaking ties by ID so
// listings are deterministic.
func newestFirst(aAt, bAt time.Time, aID, bID uuid.UUID) int {
	if aAt.Equal(bAt) {
		return strings.Compare(bID.String(), aID.String())
	}
	if aAt.After(bAt) {
		return -1
	}
	return 1
}

// --- products ---

type productStore struct {
	s *Store
}

// NewProductRepository returns the product repository view of the store.
func NewProductRepository(s *Store) repository.ProductRepository {
	return &productStore{s: s}
}

func (r *productStore) Create(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.productsBySKU[product.SKU]; exists {
		return model.ErrDuplicateSKU
	}

	r.s.products[product.ID] = *product
	r.s.productsBySKU[product.SKU] = product.ID
	return nil
}

func (r *productStore) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, exists := r.s.products[id]
	if !exists {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (r *productStore) GetBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, exists := r.s.productsBySKU[sku]
	if !exists {
		return nil, nil
	}
	p := r.s.products[id]
	return &p, nil
}

func (r *productStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, exists := r.s.products[id]; exists {
			products = append(products, p)
		}
	}

	slices.SortFunc(products, func(a, b model.Product) int {
		return strings.Compare(a.Name, b.Name)
	})

	return products, nil
}

func (r *productStore) List(_ context.Context, limit, offset int, search string) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if matchesSearch(p, search) {
			products = append(products, p)
		}
	}

	slices.SortFunc(products, func(a, b model.Product) int {
		return strings.Compare(a.Name, b.Name)
	})

	return paginate(products, limit, offset), nil
}

func (r *productStore) Update(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, exists := r.s.products[product.ID]
	if !exists {
		return model.ErrProductNotFound
	}

	if other, taken := r.s.productsBySKU[product.SKU]; taken && other != product.ID {
		return model.ErrDuplicateSKU
	}

	if prev.SKU != product.SKU {
		delete(r.s.productsBySKU, prev.SKU)
	}
	r.s.products[product.ID] = *product
	r.s.productsBySKU[product.SKU] = product.ID
	return nil
}

func (r *productStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, exists := r.s.products[id]
	if !exists {
		return false, nil
	}

	delete(r.s.products, id)
	delete(r.s.productsBySKU, p.SKU)
	return true, nil
}

func (r *productStore) GetForUpdate(_ context.Context, tx repository.Tx, id uuid.UUID) (*model.Product, error) {
	if _, err := r.s.tx(tx); err != nil {
		return nil, err
	}

	p, exists := r.s.products[id]
	if !exists {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (r *productStore) UpdateStock(_ context.Context, tx repository.Tx, id uuid.UUID, stock int) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	prev, exists := r.s.products[id]
	if !exists {
		return model.ErrProductNotFound
	}

	mtx.undo = append(mtx.undo, func() { r.s.products[id] = prev })

	updated := prev
	updated.StockQuantity = stock
	updated.UpdatedAt = time.Now()
	r.s.products[id] = updated
	return nil
}

// --- orders ---

type orderStore struct {
	s *Store
}

// NewOrderRepository returns the order repository view of the store.
func NewOrderRepository(s *Store) repository.OrderRepository {
	return &orderStore{s: s}
}

func (r *orderStore) BeginTx(_ context.Context) (repository.Tx, error) {
	return r.s.begin(), nil
}

func (r *orderStore) CreateOrder(_ context.Context, tx repository.Tx, order *model.Order) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	id := order.ID
	mtx.undo = append(mtx.undo, func() { delete(r.s.orders, id) })
	r.s.orders[id] = *order
	return nil
}

func (r *orderStore) CreateOrderItems(_ context.Context, tx repository.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	orderID := items[0].OrderID
	prev, existed := r.s.orderItems[orderID]
	mtx.undo = append(mtx.undo, func() {
		if existed {
			r.s.orderItems[orderID] = prev
		} else {
			delete(r.s.orderItems, orderID)
		}
	})

	r.s.orderItems[orderID] = append(slices.Clone(prev), items...)
	return nil
}

func (r *orderStore) GetByID(_ context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, exists := r.s.orders[id]
	if !exists {
		return nil, nil, nil
	}

	copied := order
	return &copied, slices.Clone(r.s.orderItems[id]), nil
}

func (r *orderStore) List(_ context.Context, limit, offset int) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]model.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		orders = append(orders, o)
	}

	slices.SortFunc(orders, func(a, b model.Order) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	return paginate(orders, limit, offset), nil
}

func (r *orderStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, exists := r.s.orders[id]
	if !exists {
		return nil, nil
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	r.s.orders[id] = order

	copied := order
	return &copied, nil
}

// --- returns ---

type returnStore struct {
	s *Store
}

// NewReturnRepository returns the return repository view of the store.
func NewReturnRepository(s *Store) repository.ReturnRepository {
	return &returnStore{s: s}
}

func (r *returnStore) BeginTx(_ context.Context) (repository.Tx, error) {
	return r.s.begin(), nil
}

func (r *returnStore) CreateReturn(_ context.Context, tx repository.Tx, ret *model.Return) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	id := ret.ID
	mtx.undo = append(mtx.undo, func() { delete(r.s.returns, id) })
	r.s.returns[id] = *ret
	return nil
}

func (r *returnStore) CreateReturnItems(_ context.Context, tx repository.Tx, items []model.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}

	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	returnID := items[0].ReturnID
	prev, existed := r.s.returnItems[returnID]
	mtx.undo = append(mtx.undo, func() {
		if existed {
			r.s.returnItems[returnID] = prev
		} else {
			delete(r.s.returnItems, returnID)
		}
	})

	r.s.returnItems[returnID] = append(slices.Clone(prev), items...)
	return nil
}

func (r *returnStore) GetByID(_ context.Context, id uuid.UUID) (*model.Return, []model.ReturnItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ret, exists := r.s.returns[id]
	if !exists {
		return nil, nil, nil
	}

	copied := ret
	return &copied, slices.Clone(r.s.returnItems[id]), nil
}

func (r *returnStore) List(_ context.Context, limit, offset int) ([]model.Return, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	returns := make([]model.Return, 0, len(r.s.returns))
	for _, ret := range r.s.returns {
		returns = append(returns, ret)
	}

	slices.SortFunc(returns, func(a, b model.Return) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	return paginate(returns, limit, offset), nil
}

// --- stock movements ---

type movementStore struct {
	s *Store
}

// NewStockMovementRepository returns the stock movement repository view of the store.
func NewStockMovementRepository(s *Store) repository.StockMovementRepository {
	return &movementStore{s: s}
}

func (r *movementStore) BeginTx(_ context.Context) (repository.Tx, error) {
	return r.s.begin(), nil
}

func (r *movementStore) Insert(_ context.Context, tx repository.Tx, movement *model.StockMovement) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	mtx.undo = append(mtx.undo, func() {
		r.s.movements = r.s.movements[:len(r.s.movements)-1]
	})
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *movementStore) List(_ context.Context, productID *uuid.UUID, limit, offset int) ([]model.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// Append order is chronological, so walking backwards yields newest first.
	movements := make([]model.StockMovement, 0, len(r.s.movements))
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if productID != nil && m.ProductID != *productID {
			continue
		}
		movements = append(movements, m)
	}

	return paginate(movements, limit, offset), nil
}

// --- discount codes ---

type creditStore struct {
	s *Store
}

// NewDiscountCodeRepository returns the discount code repository view of the store.
func NewDiscountCodeRepository(s *Store) repository.DiscountCodeRepository {
	return &creditStore{s: s}
}

func (r *creditStore) BeginTx(_ context.Context) (repository.Tx, error) {
	return r.s.begin(), nil
}

func (r *creditStore) Create(_ context.Context, code *model.DiscountCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.codes[code.ID] = *code
	r.s.codesByCode[code.Code] = code.ID
	return nil
}

func (r *creditStore) GetByCode(_ context.Context, code string) (*model.DiscountCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, exists := r.s.codesByCode[code]
	if !exists {
		return nil, nil
	}
	dc := r.s.codes[id]
	return &dc, nil
}

func (r *creditStore) GetByCodeForUpdate(_ context.Context, tx repository.Tx, code string) (*model.DiscountCode, error) {
	if _, err := r.s.tx(tx); err != nil {
		return nil, err
	}

	id, exists := r.s.codesByCode[code]
	if !exists {
		return nil, nil
	}
	dc := r.s.codes[id]
	return &dc, nil
}

func (r *creditStore) UpdateAmount(_ context.Context, tx repository.Tx, id uuid.UUID, amount model.Cents) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	prev, exists := r.s.codes[id]
	if !exists {
		return model.ErrDiscountCodeNotFound
	}

	mtx.undo = append(mtx.undo, func() { r.s.codes[id] = prev })

	updated := prev
	updated.Amount = amount
	r.s.codes[id] = updated
	return nil
}

func (r *creditStore) DeleteTx(_ context.Context, tx repository.Tx, id uuid.UUID) error {
	mtx, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	prev, exists := r.s.codes[id]
	if !exists {
		return model.ErrDiscountCodeNotFound
	}

	mtx.undo = append(mtx.undo, func() {
		r.s.codes[id] = prev
		r.s.codesByCode[prev.Code] = id
	})

	delete(r.s.codes, id)
	delete(r.s.codesByCode, prev.Code)
	return nil
}

func (r *creditStore) List(_ context.Context, customerEmail string) ([]model.DiscountCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	codes := make([]model.DiscountCode, 0, len(r.s.codes))
	for _, dc := range r.s.codes {
		if customerEmail != "" && dc.CustomerEmail != customerEmail {
			continue
		}
		codes = append(codes, dc)
	}

	slices.SortFunc(codes, func(a, b model.DiscountCode) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	return codes, nil
}

func (r *creditStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dc, exists := r.s.codes[id]
	if !exists {
		return false, nil
	}

	delete(r.s.codes, id)
	delete(r.s.codesByCode, dc.Code)
	return true, nil
}
