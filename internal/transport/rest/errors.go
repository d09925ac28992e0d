package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkovalev/mybooks-backend/internal/csvimport"
	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// csvViolationResponse is the 422 payload for a rejected CSV upload.
// Only the fields relevant to the violation kind are set.
type csvViolationResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Line     int    `json:"line,omitempty"`
	Count    int    `json:"count,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Expected int    `json:"expected,omitempty"`
	Actual   int    `json:"actual,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps service errors to HTTP status codes. CSV grammar
// violations get a structured 422 so clients can point at the offending
// line; everything else follows the usual sentinel mapping.
func handleError(ctx context.Context, w http.ResponseWriter, log *slog.Logger, err error) {
	var csvErr *csvimport.ValidateError
	if errors.As(err, &csvErr) {
		writeJSON(w, http.StatusUnprocessableEntity, csvViolationResponse{
			Error:    csvErr.Error(),
			Kind:     string(csvErr.Kind),
			Line:     csvErr.Line,
			Count:    csvErr.Count,
			Limit:    csvErr.Limit,
			Expected: csvErr.Expected,
			Actual:   csvErr.Actual,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		log.ErrorContext(ctx, "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
