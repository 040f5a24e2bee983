package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/cache"
	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/handler"
	"stockroom/internal/notify"
	"stockroom/internal/repository"
	"stockroom/internal/repository/memory"
	"stockroom/internal/router"
	"stockroom/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting stockroom API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the backing store. The memory driver serves demo and fallback
	// mode behind the same repository interfaces.
	var (
		productRepo  repository.ProductRepository
		orderRepo    repository.OrderRepository
		returnRepo   repository.ReturnRepository
		movementRepo repository.StockMovementRepository
		creditRepo   repository.DiscountCodeRepository
	)

	switch cfg.Database.Driver {
	case "memory":
		logger.Info().Msg("using in-memory store")
		store := memory.NewStore()
		productRepo = memory.NewProductRepository(store)
		orderRepo = memory.NewOrderRepository(store)
		returnRepo = memory.NewReturnRepository(store)
		movementRepo = memory.NewStockMovementRepository(store)
		creditRepo = memory.NewDiscountCodeRepository(store)
	default:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		productRepo = repository.NewProductRepository(pool, logger)
		orderRepo = repository.NewOrderRepository(pool, logger)
		returnRepo = repository.NewReturnRepository(pool, logger)
		movementRepo = repository.NewStockMovementRepository(pool, logger)
		creditRepo = repository.NewDiscountCodeRepository(pool, logger)
	}

	// Initialize product cache with redis and nop fallback
	var productCache cache.ProductCache = cache.NewNopCache()
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisProductCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTL)*time.Second,
		)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn().
				Err(err).
				Msg("redis unreachable, falling back to nop product cache")
		} else {
			productCache = redisCache
			defer redisCache.Close()
		}
	} else {
		logger.Info().Msg("product cache disabled (redis not enabled)")
	}

	// Initialize notifier: SMTP when configured, nop otherwise
	var notifier notify.Notifier = notify.NewNopNotifier(logger)
	if cfg.SMTP.Host != "" {
		smtpNotifier, err := notify.NewSMTPNotifier(cfg.SMTP)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise SMTP notifier, store credit emails disabled")
		} else {
			notifier = smtpNotifier
		}
	}

	// Initialize services
	creditService := service.NewCreditService(creditRepo, logger)
	productService := service.NewProductService(productRepo, productCache, logger)
	stockService := service.NewStockService(movementRepo, productRepo, productCache, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, movementRepo, creditService, productCache, logger)
	returnService := service.NewReturnService(returnRepo, orderRepo, productRepo, movementRepo, creditService, notifier, productCache, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Return:  handler.NewReturnHandler(returnService, logger),
		Credit:  handler.NewCreditHandler(creditService, logger),
		Stock:   handler.NewStockHandler(stockService, logger),
	}, cfg.Server.RateLimit, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
