package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	"wedding-guests/internal/observability/middleware"
)

// Stable error codes carried in dto.ErrorResponse.Error.
const (
	CodeMissingCredential  = "missing_credential"
	CodeInvalidCredential  = "invalid_credential"
	CodeInvalidInput       = "invalid_input"
	CodeDuplicateEmail     = "duplicate_email"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotFound           = "not_found"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: message})
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and answered with a bare 500 so storage details never reach clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		writeErrorCode(w, http.StatusUnauthorized, CodeMissingCredential, "access denied: missing bearer token")
	case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrInvalidToken):
		writeErrorCode(w, http.StatusUnauthorized, CodeInvalidCredential, "access denied: invalid token")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, CodeInvalidCredentials, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorCode(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeErrorCode(w, http.StatusConflict, CodeDuplicateEmail, domain.ErrDuplicateEmail.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, "guest not found")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"trace_id", middleware.TraceIDFromContext(r.Context()),
		)
		writeErrorCode(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return false
	}
	return true
}
