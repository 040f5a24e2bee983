package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/cache"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.ProductCache
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, productCache cache.ProductCache, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// Create adds a product to the catalog.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	now := time.Now()
	product := &model.Product{
		ID:            uuid.New(),
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, model.ErrDuplicateSKU) {
			s.logger.Warn().Str("sku", req.SKU).Msg("duplicate SKU")
			return nil, err
		}
		s.logger.Error().Err(err).Str("sku", req.SKU).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("sku", product.SKU).
		Msg("product created")

	return product, nil
}

// GetByID retrieves a single product by ID, consulting the cache first.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if cached, hit, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
	} else if hit {
		s.logger.Debug().Str("product_id", id.String()).Msg("product cache hit")
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache write failed")
	}

	return product, nil
}

// GetBySKU retrieves a single product by SKU.
func (s *productService) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	if sku == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		s.logger.Error().Err(err).Str("sku", sku).Msg("failed to get product by SKU")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("sku", sku).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// List retrieves products with pagination and optional name/SKU search.
func (s *productService) List(ctx context.Context, limit, offset int, search string) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.List(ctx, limit, offset, search)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// Update modifies product fields. Stock is excluded here; it only moves
// through the stock ledger.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product for update")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, model.ErrDuplicateSKU) || errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Msg("product updated")

	return product, nil
}

// Delete removes a product from the catalog.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if !found {
		return model.ErrProductNotFound
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Msg("product deleted")

	return nil
}
