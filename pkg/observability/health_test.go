package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		redis    Pinger
		expected string
		code     int
	}{
		{name: "all healthy", db: fakePinger{}, redis: fakePinger{}, expected: "healthy", code: http.StatusOK},
		{name: "redis down degrades", db: fakePinger{}, redis: fakePinger{err: errors.New("refused")}, expected: "degraded", code: http.StatusOK},
		{name: "database down fails", db: fakePinger{err: errors.New("refused")}, redis: fakePinger{}, expected: "unhealthy", code: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.db)
			h.AddOptional("redis", tt.redis)

			rec := httptest.NewRecorder()
			h.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			var status HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expected, status.Status)
			assert.Contains(t, status.Checks, "database")
			assert.Contains(t, status.Checks, "redis")
		})
	}
}
