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
	healthy   = pingFunc(func(context.Context) error { return nil })
	unhealthy = pingFunc(func(context.Context) error { return errors.New("refused") })
)

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantStatus int
		wantBody   string
	}{
		{
			name: "all healthy",
			deps: []Dependency{
				{Name: "database", Checker: healthy},
				{Name: "redis", Checker: healthy},
				{Name: "storage", Checker: healthy},
			},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name: "storage down",
			deps: []Dependency{
				{Name: "database", Checker: healthy},
				{Name: "storage", Checker: unhealthy},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "degraded",
		},
		{
			name:       "unconfigured checker",
			deps:       []Dependency{{Name: "redis"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewHandler(tt.deps...), "/readyz")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			require.Len(t, body.Checks, len(tt.deps))
			for i, dep := range tt.deps {
				assert.Equal(t, dep.Name, body.Checks[i].Name)
			}
		})
	}
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler(Dependency{Name: "database", Checker: healthy})

	assert.Equal(t, http.StatusOK, serve(t, h, "/livez").Code)

	h.SetShutdown(true)

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, "/readyz").Code)
}

func TestNotReady(t *testing.T) {
	h := NewHandler()
	h.SetReady(false)

	rec := serve(t, h, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}
