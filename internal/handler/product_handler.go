package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
	"stockroom/internal/service"
)

// ProductHandler handles product catalog HTTP requests.
type ProductHandler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to create product", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to create product", h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "failed to create product", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// List handles GET /products requests with pagination and optional search.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	search := r.URL.Query().Get("search")

	products, err := h.service.List(r.Context(), limit, offset, search)
	if err != nil {
		writeError(w, r, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "product")
	if err != nil {
		writeError(w, r, err, "failed to retrieve product", h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetBySKU handles GET /products/sku/{sku} requests for scan lookups.
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, r, err, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Update handles PUT /products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "product")
	if err != nil {
		writeError(w, r, err, "failed to update product", h.logger)
		return
	}

	var req model.UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to update product", h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, "failed to update product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "product")
	if err != nil {
		writeError(w, r, err, "failed to delete product", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "failed to delete product", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
