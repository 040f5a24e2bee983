package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/cache"
	"stockroom/internal/model"
	"stockroom/internal/notify"
	"stockroom/internal/refcode"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// returnService implements ReturnService, the settlement engine behind
// POST /returns.
type returnService struct {
	returnRepo   repository.ReturnRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	creditSvc    CreditService
	notifier     notify.Notifier
	cache        cache.ProductCache
	logger       zerolog.Logger
}

// NewReturnService creates a new return service.
func NewReturnService(
	returnRepo repository.ReturnRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	creditSvc CreditService,
	notifier notify.Notifier,
	productCache cache.ProductCache,
	logger zerolog.Logger,
) ReturnService {
	return &returnService{
		returnRepo:   returnRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		creditSvc:    creditSvc,
		notifier:     notifier,
		cache:        productCache,
		logger:       logger.With().Str("service", "return").Logger(),
	}
}

// Process settles a return against an order. Return value is priced from
// the original order items, exchange value from the current catalog. If no
// exchange is involved the full return value is refunded; otherwise any
// surplus becomes store credit. Returned items are restocked through the
// ledger in the same transaction; credit issuance and notification happen
// after the commit and never fail the settlement.
func (s *returnService) Process(ctx context.Context, req *model.CreateReturnRequest) (*model.ReturnResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("return request is nil")
	}

	// Items with zero quantity are tolerated in the payload but excluded
	// from settlement.
	items := make([]model.ReturnItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		s.logger.Warn().Str("order_id", req.OrderID.String()).Msg("return has no qualifying items")
		return nil, model.ErrNoReturnableItems
	}

	order, orderItems, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", req.OrderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to process return: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", req.OrderID.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	orderedByProduct := make(map[uuid.UUID]model.OrderItem, len(orderItems))
	for _, item := range orderItems {
		orderedByProduct[item.ProductID] = item
	}

	// Exchange products are priced at the current catalog rate, so resolve
	// them up front.
	exchangeIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.ExchangeProductID != nil && !seen[*item.ExchangeProductID] {
			seen[*item.ExchangeProductID] = true
			exchangeIDs = append(exchangeIDs, *item.ExchangeProductID)
		}
	}
	exchangeByID := make(map[uuid.UUID]model.Product, len(exchangeIDs))
	if len(exchangeIDs) > 0 {
		exchangeProducts, err := s.productRepo.GetByIDs(ctx, exchangeIDs)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to get exchange products")
			return nil, fmt.Errorf("failed to process return: %w", err)
		}
		for _, p := range exchangeProducts {
			exchangeByID[p.ID] = p
		}
	}

	retID := uuid.New()
	returnItems := make([]model.ReturnItem, len(items))
	var totalReturnValue, totalExchangeValue model.Cents
	for i, item := range items {
		ordered, ok := orderedByProduct[item.ProductID]
		if !ok {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Msg("returned product not on order")
			return nil, model.NewValidationError(
				fmt.Sprintf("product %s was not part of order %s", item.ProductID, order.OrderNumber))
		}

		subtotal := ordered.UnitPrice.Mul(item.Quantity)
		totalReturnValue += subtotal

		returnItems[i] = model.ReturnItem{
			ID:          uuid.New(),
			ReturnID:    retID,
			ProductID:   ordered.ProductID,
			ProductName: ordered.ProductName,
			SKU:         ordered.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   ordered.UnitPrice,
			Subtotal:    subtotal,
		}

		if item.ExchangeProductID != nil {
			exchange, ok := exchangeByID[*item.ExchangeProductID]
			if !ok {
				s.logger.Warn().
					Str("product_id", item.ExchangeProductID.String()).
					Msg("exchange product not found")
				return nil, model.ErrProductNotFound
			}
			// Like-for-like count: the exchange is priced at the returned
			// quantity.
			totalExchangeValue += exchange.Price.Mul(item.Quantity)
			returnItems[i].ExchangeProductID = &exchange.ID
			name := exchange.Name
			returnItems[i].ExchangeProductName = &name
		}
	}

	var refundAmount, creditAmount model.Cents
	if totalExchangeValue == 0 {
		refundAmount = totalReturnValue
	} else if totalReturnValue > totalExchangeValue {
		creditAmount = totalReturnValue - totalExchangeValue
	}

	now := time.Now()
	ret := &model.Return{
		ID:            retID,
		ReturnNumber:  refcode.ReturnNumber(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Status:        model.ReturnStatusCompleted,
		Reason:        req.Reason,
		RefundAmount:  refundAmount,
		CreditAmount:  creditAmount,
		CreatedAt:     now,
	}

	tx, err := s.returnRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to process return: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.returnRepo.CreateReturn(ctx, tx, ret); err != nil {
		s.logger.Error().Err(err).Str("return_id", ret.ID.String()).Msg("failed to create return")
		return nil, fmt.Errorf("failed to process return: %w", err)
	}

	if err = s.returnRepo.CreateReturnItems(ctx, tx, returnItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("return_id", ret.ID.String()).
			Int("item_count", len(returnItems)).
			Msg("failed to create return items")
		return nil, fmt.Errorf("failed to process return: %w", err)
	}

	// Restock every returned item through the ledger.
	for _, item := range returnItems {
		var product *model.Product
		product, err = s.productRepo.GetForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", item.ProductID.String()).Msg("failed to lock product")
			return nil, fmt.Errorf("failed to process return: %w", err)
		}
		if product == nil {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("returned product no longer in catalog")
			err = model.ErrProductNotFound
			return nil, err
		}

		movement := &model.StockMovement{
			ID:           uuid.New(),
			ProductID:    product.ID,
			ProductName:  product.Name,
			SKU:          product.SKU,
			Type:         model.MovementTypeIn,
			Quantity:     item.Quantity,
			AppliedDelta: item.Quantity,
			Reason:       model.MovementReasonReturn,
			Notes:        "return " + ret.ReturnNumber,
			CreatedAt:    now,
		}
		if err = s.movementRepo.Insert(ctx, tx, movement); err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to record return movement")
			return nil, fmt.Errorf("failed to process return: %w", err)
		}
		if err = s.productRepo.UpdateStock(ctx, tx, product.ID, product.StockQuantity+item.Quantity); err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to restock product")
			return nil, fmt.Errorf("failed to process return: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("return_id", ret.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to process return: %w", err)
	}

	for _, item := range returnItems {
		if cacheErr := s.cache.Invalidate(ctx, item.ProductID); cacheErr != nil {
			s.logger.Warn().Err(cacheErr).Str("product_id", item.ProductID.String()).Msg("product cache invalidation failed")
		}
	}

	resp := &model.ReturnResponse{
		Return:             *ret,
		Items:              returnItems,
		TotalReturnValue:   totalReturnValue,
		TotalExchangeValue: totalExchangeValue,
	}

	// Store credit is issued after the commit. The settlement stands even if
	// issuance or the notification email fails.
	if creditAmount > 0 && order.CustomerEmail != nil && *order.CustomerEmail != "" {
		expiresAt := now.AddDate(0, 6, 0)
		code, issueErr := s.creditSvc.Issue(ctx, *order.CustomerEmail, creditAmount, &expiresAt)
		if issueErr != nil {
			s.logger.Error().
				Err(issueErr).
				Str("return_id", ret.ID.String()).
				Str("credit_amount", creditAmount.String()).
				Msg("failed to issue store credit after settlement")
		} else {
			resp.DiscountCode = code
			notification := notify.CreditNotification{
				Email:     code.CustomerEmail,
				Code:      code.Code,
				Amount:    code.Amount,
				ExpiresAt: code.ExpiresAt,
			}
			if sendErr := s.notifier.SendCreditIssued(ctx, notification); sendErr != nil {
				s.logger.Error().
					Err(sendErr).
					Str("error_code", model.ErrCodeExternalService).
					Str("return_id", ret.ID.String()).
					Str("code", code.Code).
					Msg("failed to send store credit notification")
			}
		}
	}

	s.logger.Info().
		Str("return_id", ret.ID.String()).
		Str("return_number", ret.ReturnNumber).
		Str("order_number", ret.OrderNumber).
		Int("item_count", len(returnItems)).
		Str("refund_amount", refundAmount.String()).
		Str("credit_amount", creditAmount.String()).
		Msg("return settled")

	return resp, nil
}

// GetByID retrieves a settled return with its items. The return value total
// is the sum of item subtotals; the exchange total is derived from the
// persisted refund and credit amounts.
func (s *returnService) GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnResponse, error) {
	ret, items, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("return_id", id.String()).Msg("failed to get return")
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	if ret == nil {
		s.logger.Debug().Str("return_id", id.String()).Msg("return not found")
		return nil, model.ErrReturnNotFound
	}

	var totalReturnValue model.Cents
	for _, item := range items {
		totalReturnValue += item.Subtotal
	}

	return &model.ReturnResponse{
		Return:             *ret,
		Items:              items,
		TotalReturnValue:   totalReturnValue,
		TotalExchangeValue: totalReturnValue - ret.CreditAmount - ret.RefundAmount,
	}, nil
}

// List retrieves returns with pagination, newest first.
func (s *returnService) List(ctx context.Context, limit, offset int) ([]model.Return, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	returns, err := s.returnRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list returns")
		return nil, fmt.Errorf("failed to get returns: %w", err)
	}

	return returns, nil
}
