package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"stockroom/internal/handler"
	"stockroom/internal/middleware"
)

// Handlers groups the handlers mounted by New.
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Return  *handler.ReturnHandler
	Credit  *handler.CreditHandler
	Stock   *handler.StockHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// rateLimit is the per-IP request budget per minute; zero disables limiting.
func New(h Handlers, rateLimit int, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	if rateLimit > 0 {
		r.Use(httprate.Limit(rateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.Product.Create)
		r.Get("/", h.Product.List)
		r.Get("/sku/{sku}", h.Product.GetBySKU)
		r.Get("/{id}", h.Product.GetByID)
		r.Put("/{id}", h.Product.Update)
		r.Delete("/{id}", h.Product.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Order.Create)
		r.Get("/", h.Order.List)
		r.Get("/{id}", h.Order.GetByID)
		r.Patch("/{id}/status", h.Order.UpdateStatus)
	})

	r.Route("/returns", func(r chi.Router) {
		r.Post("/", h.Return.Create)
		r.Get("/", h.Return.List)
		r.Get("/{id}", h.Return.GetByID)
	})

	r.Route("/discount-codes", func(r chi.Router) {
		r.Post("/", h.Credit.Issue)
		r.Get("/", h.Credit.List)
		r.Post("/{code}/use", h.Credit.Redeem)
		r.Delete("/{id}", h.Credit.Delete)
	})

	r.Route("/stock-movements", func(r chi.Router) {
		r.Post("/", h.Stock.Create)
		r.Get("/", h.Stock.List)
	})

	return r
}
