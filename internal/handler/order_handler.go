package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
	"stockroom/internal/service"
)

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /orders requests. The response carries creditStatus
// and creditWarning when a discount code was supplied.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to create order", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to create order", h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "order")
	if err != nil {
		writeError(w, r, err, "failed to retrieve order", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /orders requests with pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	orders, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "order")
	if err != nil {
		writeError(w, r, err, "failed to update order status", h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to update order status", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to update order status", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err, "failed to update order status", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
