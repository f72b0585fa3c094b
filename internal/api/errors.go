// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// Error bodies. Clients show them verbatim after "Error encountered: ".
const (
	textInvalidID      = "Producer Id Is Invalid"
	textNotFound       = "Fetched an empty result that should not be!"
	textAlreadySending = "Already sending messages"
	textShuttingDown   = "Service is shutting down"
	textInternal       = "Internal server error"
	textBadJSON        = "Request body is not valid JSON"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeText writes a plain-text error body.
func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

// statusFor maps domain errors to a status code and body.
func statusFor(err error) (int, string) {
	var verr *producer.ValidationError
	switch {
	case errors.Is(err, producer.ErrInvalidID):
		return http.StatusUnprocessableEntity, textInvalidID
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Error()
	case errors.Is(err, producer.ErrNotFound):
		return http.StatusNotFound, textNotFound
	case errors.Is(err, producer.ErrAlreadySending):
		return http.StatusConflict, textAlreadySending
	case errors.Is(err, producer.ErrShuttingDown):
		return http.StatusServiceUnavailable, textShuttingDown
	default:
		return http.StatusInternalServerError, textInternal
	}
}

// writeError maps err and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "request.failed").
			Str(log.FieldPath, r.URL.Path).
			Msg("request failed")
	}
	writeText(w, code, msg)
}
