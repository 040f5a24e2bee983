package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/cache"
	"stockroom/internal/model"
	"stockroom/internal/refcode"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	creditSvc    CreditService
	cache        cache.ProductCache
	logger       zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	creditSvc CreditService,
	productCache cache.ProductCache,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		creditSvc:    creditSvc,
		cache:        productCache,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// Create creates a new order, freezing unit prices and decrementing stock in
// a single transaction. Store credit named in the request is redeemed after
// the commit; a redemption failure is reported on the response, never rolled
// back into the order.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		OrderNumber:   refcode.OrderNumber(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        model.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Lock each product, freeze its price into the line item and write the
	// matching sale movement. Outbound stock clamps at zero; the movement
	// records both the requested quantity and the applied delta.
	orderItems := make([]model.OrderItem, len(req.Items))
	var total model.Cents
	for i, item := range req.Items {
		var product *model.Product
		product, err = s.productRepo.GetForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", item.ProductID.String()).Msg("failed to lock product")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if product == nil {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("order references unknown product")
			err = model.ErrProductNotFound
			return nil, err
		}

		subtotal := product.Price.Mul(item.Quantity)
		orderItems[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		}
		total += subtotal

		newStock := product.StockQuantity - item.Quantity
		if newStock < 0 {
			newStock = 0
		}

		movement := &model.StockMovement{
			ID:           uuid.New(),
			ProductID:    product.ID,
			ProductName:  product.Name,
			SKU:          product.SKU,
			Type:         model.MovementTypeOut,
			Quantity:     item.Quantity,
			AppliedDelta: newStock - product.StockQuantity,
			Reason:       model.MovementReasonSale,
			Notes:        "order " + order.OrderNumber,
			CreatedAt:    now,
		}
		if err = s.movementRepo.Insert(ctx, tx, movement); err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to record sale movement")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if err = s.productRepo.UpdateStock(ctx, tx, product.ID, newStock); err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update stock")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}
	order.TotalAmount = total

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range orderItems {
		if cacheErr := s.cache.Invalidate(ctx, item.ProductID); cacheErr != nil {
			s.logger.Warn().Err(cacheErr).Str("product_id", item.ProductID.String()).Msg("product cache invalidation failed")
		}
	}

	resp := &model.OrderResponse{
		Order: *order,
		Items: orderItems,
	}

	// Redeem store credit only once the order is safely committed. The order
	// stands even when redemption fails; the caller is told via creditStatus.
	if req.DiscountCode != nil && *req.DiscountCode != "" {
		var amountUsed model.Cents
		if req.AmountUsed != nil {
			amountUsed = *req.AmountUsed
		}
		if _, redeemErr := s.creditSvc.Redeem(ctx, *req.DiscountCode, amountUsed); redeemErr != nil {
			s.logger.Warn().
				Err(redeemErr).
				Str("order_id", order.ID.String()).
				Str("discount_code", *req.DiscountCode).
				Msg("store credit redemption failed after order commit")
			resp.CreditStatus = model.CreditStatusFailed
			resp.CreditWarning = "order created but store credit was not updated: " + redeemErr.Error()
		} else {
			resp.CreditStatus = model.CreditStatusApplied
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(orderItems)).
		Str("total_amount", order.TotalAmount.String()).
		Msg("order created successfully")

	return resp, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{
		Order: *order,
		Items: items,
	}, nil
}

// List retrieves orders with pagination, newest first.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus transitions an order to a new status.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		s.logger.Warn().Str("order_id", id.String()).Str("status", string(status)).Msg("invalid order status")
		return nil, model.ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// validateCreateRequest validates the order request.
func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is nil")
	}

	if len(req.Items) == 0 {
		return model.NewValidationError("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
