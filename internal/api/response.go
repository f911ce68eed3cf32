package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fitness/internal/service"
)

const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeDuplicateEntry    = "DUPLICATE_ENTRY"
	ErrCodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

type ErrorResponse struct {
	Result  bool   `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type resultResponse struct {
	Result bool `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Result:  false,
		Code:    code,
		Message: message,
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "An internal error occurred")
}

// writeServiceError maps a service error onto the response contract.
// Errors outside the service taxonomy are logged and hidden from the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	message := ""
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidToken, message)
	case errors.Is(err, service.ErrExpiredToken):
		writeError(w, http.StatusBadRequest, ErrCodeTokenExpired, message)
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
	case errors.Is(err, service.ErrDuplicateEntry):
		writeError(w, http.StatusBadRequest, ErrCodeDuplicateEntry, message)
	case errors.Is(err, service.ErrExternalService):
		slog.Error("external service failed", "path", r.URL.Path, "request_id", requestIDFrom(r), "error", err)
		writeError(w, http.StatusInternalServerError, ErrCodeExternalService, message)
	default:
		slog.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r), "error", err)
		internalError(w)
	}
}
