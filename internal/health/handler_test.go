// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("down") })
)

func readiness(t *testing.T, h *Handler) (int, ReadinessResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		db, redis  Checker
		model      Checker
		wantCode   int
		wantStatus string
	}{
		{name: "all up", db: up, redis: up, model: up, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "model down", db: up, redis: up, model: down, wantCode: http.StatusOK, wantStatus: "degraded"},
		{name: "redis down", db: up, redis: down, model: up, wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable"},
		{name: "db missing", db: nil, redis: up, model: down, wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(
				Check{Name: "database", Checker: tt.db, Critical: true},
				Check{Name: "redis", Checker: tt.redis, Critical: true},
				Check{Name: "model", Checker: tt.model},
			)

			code, resp := readiness(t, h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			require.Len(t, resp.Checks, 3)
			assert.Equal(t, "database", resp.Checks[0].Name)
			assert.Equal(t, "model", resp.Checks[2].Name)
			assert.False(t, resp.Checks[2].Critical)
		})
	}
}

func TestLivenessAndShutdown(t *testing.T) {
	h := NewHandler(Check{Name: "database", Checker: up, Critical: true})
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetShutdown(true)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting_down")
}
