package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthController(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantDatabase string
	}{
		{"connected", nil, http.StatusOK, "connected"},
		{"database down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewHealthController(testLogger, fakePinger{err: tt.err})
			c.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
			rr := httptest.NewRecorder()
			c.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decode(t, rr)
			assert.Equal(t, tt.err == nil, env.Success)
			var status HealthStatus
			require.NoError(t, json.Unmarshal(env.Data, &status))
			assert.Equal(t, tt.wantDatabase, status.Database)
			assert.Equal(t, 2024, status.Timestamp.Year())
		})
	}
}
