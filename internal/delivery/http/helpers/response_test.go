package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		msgs        ErrorMessages
		wantStatus  int
		wantMessage string
		wantErrors  bool
	}{
		{"validation", domain.NewValidationError("end", "End date must be after start date"), ErrorMessages{}, http.StatusBadRequest, MsgValidationFailed, true},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("title", "x")), ErrorMessages{}, http.StatusBadRequest, MsgValidationFailed, true},
		{"duplicate email", domain.ErrDuplicateEmail, ErrorMessages{}, http.StatusBadRequest, MsgValidationFailed, true},
		{"bad credentials", domain.ErrInvalidCredentials, ErrorMessages{}, http.StatusUnauthorized, "Invalid email or password", false},
		{"not found default", domain.ErrNotFound, ErrorMessages{}, http.StatusNotFound, MsgNotFound, false},
		{"not found custom", domain.ErrNotFound, ErrorMessages{NotFound: "Event not found"}, http.StatusNotFound, "Event not found", false},
		{"forbidden custom", domain.ErrForbidden, ErrorMessages{Forbidden: "Access denied to this event"}, http.StatusForbidden, "Access denied to this event", false},
		{"storage", fmt.Errorf("list: %w", domain.ErrStorageUnavailable), ErrorMessages{}, http.StatusServiceUnavailable, MsgStorageUnavailable, false},
		{"unexpected", errors.New("pq: syntax error at secret_table"), ErrorMessages{}, http.StatusInternalServerError, MsgInternalError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			WriteServiceError(rr, req, testLogger, tt.err, tt.msgs)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			body := decodeEnvelope(t, rr)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			_, hasErrors := body["errors"]
			assert.Equal(t, tt.wantErrors, hasErrors)
			assert.NotContains(t, rr.Body.String(), "secret_table")
		})
	}
}

func TestWriteJSONList(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONList[string](rr, nil)

	body := decodeEnvelope(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["data"])
}

func TestWriteJSONSuccess_OmitsEmptyMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONSuccess(rr, http.StatusCreated, "", map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeEnvelope(t, rr)
	assert.NotContains(t, body, "message")
	assert.NotContains(t, body, "errors")
}
