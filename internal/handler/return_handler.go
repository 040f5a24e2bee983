package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
	"stockroom/internal/service"
)

// ReturnHandler handles return settlement HTTP requests.
type ReturnHandler struct {
	service  service.ReturnService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(service service.ReturnService, logger zerolog.Logger) *ReturnHandler {
	return &ReturnHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "return").Logger(),
	}
}

// Create handles POST /returns requests. The settlement runs synchronously;
// the response carries the persisted return, its items, the computed totals
// and any store credit issued.
func (h *ReturnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to process return", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to process return", h.logger)
		return
	}

	ret, err := h.service.Process(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "failed to process return", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ret)
}

// GetByID handles GET /returns/{id} requests.
func (h *ReturnHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "return")
	if err != nil {
		writeError(w, r, err, "failed to retrieve return", h.logger)
		return
	}

	ret, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "failed to retrieve return", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ret)
}

// List handles GET /returns requests with pagination.
func (h *ReturnHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	returns, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, "failed to retrieve returns", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, returns)
}
