package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/cache"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stockService implements StockService.
type stockService struct {
	movementRepo repository.StockMovementRepository
	productRepo  repository.ProductRepository
	cache        cache.ProductCache
	logger       zerolog.Logger
}

// NewStockService creates a new stock ledger service.
func NewStockService(
	movementRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
	logger zerolog.Logger,
) StockService {
	return &stockService{
		movementRepo: movementRepo,
		productRepo:  productRepo,
		cache:        productCache,
		logger:       logger.With().Str("service", "stock").Logger(),
	}
}

// ApplyMovement records a ledger entry and mutates the product's stock in
// one transaction. "in" adds the quantity, "out" subtracts but clamps at
// zero, "adjustment" sets the absolute level. The entry keeps the requested
// quantity; AppliedDelta records the change actually made.
func (s *stockService) ApplyMovement(ctx context.Context, req *model.CreateStockMovementRequest) (*model.StockMovement, error) {
	if req == nil {
		return nil, model.NewValidationError("stock movement request is nil")
	}

	switch req.Type {
	case model.MovementTypeIn, model.MovementTypeOut:
		if req.Quantity <= 0 {
			s.logger.Warn().
				Str("product_id", req.ProductID.String()).
				Str("type", string(req.Type)).
				Int("quantity", req.Quantity).
				Msg("invalid movement quantity")
			return nil, model.ErrInvalidQuantity
		}
	case model.MovementTypeAdjustment:
		if req.Quantity < 0 {
			s.logger.Warn().
				Str("product_id", req.ProductID.String()).
				Int("quantity", req.Quantity).
				Msg("negative adjustment target")
			return nil, model.ErrInvalidQuantity
		}
	default:
		s.logger.Warn().Str("type", string(req.Type)).Msg("unknown movement type")
		return nil, model.ErrInvalidMovementType
	}

	tx, err := s.movementRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	product, err := s.productRepo.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("failed to lock product")
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", req.ProductID.String()).Msg("product not found")
		err = model.ErrProductNotFound
		return nil, err
	}

	var newStock int
	switch req.Type {
	case model.MovementTypeIn:
		newStock = product.StockQuantity + req.Quantity
	case model.MovementTypeOut:
		newStock = product.StockQuantity - req.Quantity
		if newStock < 0 {
			newStock = 0
		}
	case model.MovementTypeAdjustment:
		newStock = req.Quantity
	}

	movement := &model.StockMovement{
		ID:           uuid.New(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		SKU:          product.SKU,
		Type:         req.Type,
		Quantity:     req.Quantity,
		AppliedDelta: newStock - product.StockQuantity,
		Reason:       req.Reason,
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
	}

	if err = s.movementRepo.Insert(ctx, tx, movement); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to record stock movement")
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}
	if err = s.productRepo.UpdateStock(ctx, tx, product.ID, newStock); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update stock")
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}

	if cacheErr := s.cache.Invalidate(ctx, product.ID); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("product_id", product.ID.String()).Msg("product cache invalidation failed")
	}

	s.logger.Info().
		Str("movement_id", movement.ID.String()).
		Str("product_id", product.ID.String()).
		Str("type", string(req.Type)).
		Int("quantity", req.Quantity).
		Int("applied_delta", movement.AppliedDelta).
		Int("new_stock", newStock).
		Msg("stock movement applied")

	return movement, nil
}

// List retrieves ledger entries, newest first, optionally for one product.
func (s *stockService) List(ctx context.Context, productID *uuid.UUID, limit, offset int) ([]model.StockMovement, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	movements, err := s.movementRepo.List(ctx, productID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list stock movements")
		return nil, fmt.Errorf("failed to get stock movements: %w", err)
	}

	return movements, nil
}
