package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stockroom/internal/model"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError resolves err to an HTTP status and writes the standard error
// body. Domain errors carry their own code and message; anything else is
// reported with the fallback message so internal detail never reaches the
// client.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	status := http.StatusInternalServerError
	code := model.ErrCodeInternalError
	message := fallback

	var domErr *model.DomainError
	if errors.As(err, &domErr) {
		switch domErr.Code {
		case model.ErrCodeValidation, model.ErrCodeConflict:
			status = http.StatusBadRequest
			code = domErr.Code
			message = domErr.Message
		case model.ErrCodeNotFound:
			status = http.StatusNotFound
			code = domErr.Code
			message = domErr.Message
		}
	}

	evt := logger.Error()
	if status < http.StatusInternalServerError {
		evt = logger.Warn()
	}
	evt.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, model.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// validationMessage flattens validator errors into a single client-facing
// line naming the failing fields.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return "validation failed on: " + strings.Join(fields, ", ")
}

// parseID parses a UUID path parameter, naming the entity in the error.
func parseID(r *http.Request, param, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, model.NewValidationError("invalid " + entity + " ID format")
	}
	return id, nil
}

// parsePagination reads limit/offset query parameters, falling back to the
// service defaults on absent or malformed values.
func parsePagination(r *http.Request) (limit, offset int) {
	limit, offset = 10, 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
