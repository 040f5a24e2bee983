package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
	"stockroom/internal/service"
)

// CreditHandler handles store credit HTTP requests.
type CreditHandler struct {
	service  service.CreditService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCreditHandler creates a new credit handler.
func NewCreditHandler(service service.CreditService, logger zerolog.Logger) *CreditHandler {
	return &CreditHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "credit").Logger(),
	}
}

// Issue handles POST /discount-codes requests for credit issued directly,
// outside of a return settlement. No notification email is sent.
func (h *CreditHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req model.IssueCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to issue store credit", h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, model.NewValidationError(validationMessage(err)), "failed to issue store credit", h.logger)
		return
	}

	code, err := h.service.Issue(r.Context(), req.CustomerEmail, req.Amount, req.ExpiresAt)
	if err != nil {
		writeError(w, r, err, "failed to issue store credit", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, code)
}

// Redeem handles POST /discount-codes/{code}/use requests.
func (h *CreditHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req model.RedeemCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, model.NewValidationError("invalid request body"), "failed to redeem store credit", h.logger)
		return
	}

	result, err := h.service.Redeem(r.Context(), chi.URLParam(r, "code"), req.AmountUsed)
	if err != nil {
		writeError(w, r, err, "failed to redeem store credit", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /discount-codes requests, optionally filtered by the
// customerEmail query parameter.
func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.List(r.Context(), r.URL.Query().Get("customerEmail"))
	if err != nil {
		writeError(w, r, err, "failed to retrieve discount codes", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, codes)
}

// Delete handles DELETE /discount-codes/{id} requests.
func (h *CreditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", "discount code")
	if err != nil {
		writeError(w, r, err, "failed to delete discount code", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "failed to delete discount code", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
