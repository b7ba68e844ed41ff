package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventcalendar/internal/domain"
)

// Client-facing messages shared by several handlers.
const (
	MsgValidationFailed   = "Validation failed"
	MsgStorageUnavailable = "Database connection not available. Please try again later."
	MsgInternalError      = "Internal server error"
	MsgNotFound           = "Not found"
	MsgForbidden          = "Access denied"
)

// APIResponse is the envelope for every API response.
// swagger:model APIResponse
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	Count   *int                `json:"count,omitempty"`
}

// WriteJSON writes body with statusCode.
func WriteJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes a successful envelope carrying data and an optional message.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	WriteJSON(w, statusCode, APIResponse{Success: true, Message: message, Data: data})
}

// WriteJSONList writes a successful envelope for a list, with count set to len(data).
func WriteJSONList[T any](w http.ResponseWriter, data []T) {
	if data == nil {
		data = []T{}
	}
	n := len(data)
	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Count: &n})
}

// WriteJSONError writes a failed envelope with message.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, APIResponse{Success: false, Message: message})
}

// WriteValidationError writes a 400 envelope listing every field problem.
func WriteValidationError(w http.ResponseWriter, errs []domain.FieldError) {
	WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: MsgValidationFailed, Errors: errs})
}

// ErrorMessages overrides the text sent for not-found and forbidden outcomes.
type ErrorMessages struct {
	NotFound  string
	Forbidden string
}

// WriteServiceError maps an error returned by a service to a response.
// Unexpected errors are logged and reported without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, msgs ErrorMessages) {
	if ve, ok := domain.AsValidationError(err); ok {
		WriteValidationError(w, ve.Errors)
		return
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteValidationError(w, []domain.FieldError{{Field: "email", Message: "User with this email already exists"}})
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrAccountDisabled):
		WriteJSONError(w, http.StatusUnauthorized, "Account is deactivated")
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, orDefault(msgs.NotFound, MsgNotFound))
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, orDefault(msgs.Forbidden, MsgForbidden))
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.WarnContext(r.Context(), "storage unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusServiceUnavailable, MsgStorageUnavailable)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, MsgInternalError)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
