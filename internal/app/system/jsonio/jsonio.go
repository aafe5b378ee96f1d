// Package jsonio reads JSON request bodies and writes JSON responses for the
// API handlers.
package jsonio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any, log *zap.Logger) {
	Write(w, http.StatusOK, v, log)
}

// Error renders err with the status implied by its apperr code. Uncoded
// errors are treated as internal and logged.
func Error(w http.ResponseWriter, err error, log *zap.Logger) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Write(w, e.HTTPStatus(), errorBody{
		Error:   e.Message,
		Message: e.Hint,
		Details: e.Details,
	}, log)
}

// Decode reads the request body into dst, capped at limits.MaxJSONBodySize.
// An empty body leaves dst untouched so that field validation reports what
// is missing. Malformed JSON yields a validation error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	err := json.NewDecoder(body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Wrap(err, apperr.CodeValidation, "Invalid JSON format")
	}
}
