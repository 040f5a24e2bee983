package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
	"stockroom/internal/service"
)

// StockHandler handles stock ledger HTTP requests.
type StockHandler struct {
	service  service.StockService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service service.StockService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "stock").Logger(),
	}
}

// Create handles POST /stock-movements requests. The response echoes the
// recorded movement including the applied delta, which differs from the
// requested quantity when an outbound movement was clamped at zero.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateStockMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to record stock movement", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to record stock movement", h.logger)
		return
	}

	movement, err := h.service.ApplyMovement(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "failed to record stock movement", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, movement)
}

// List handles GET /stock-movements requests, optionally filtered by the
// productId query parameter.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	var productID *uuid.UUID
	if raw := r.URL.Query().Get("productId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, model.NewValidationError("invalid product ID format"), "failed to retrieve stock movements", h.logger)
			return
		}
		productID = &parsed
	}

	limit, offset := parsePagination(r)

	movements, err := h.service.List(r.Context(), productID, limit, offset)
	if err != nil {
		writeError(w, r, err, "failed to retrieve stock movements", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}
