// AngelaMos | 2026
// handler_test.go

package admin

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

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/dashboard"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
	"github.com/carterperez-dev/permitdesk/internal/profile"
)

type fakeKPIs struct {
	userID string
}

func (f *fakeKPIs) BuildStats(_ context.Context, userID string) dashboard.Stats {
	f.userID = userID
	return dashboard.Stats{
		Applications:        dashboard.ApplicationCounts{Total: 7, Approved: 2},
		PendingIntents:      3,
		OutstandingInvoices: 1,
	}
}

type fakeCensus struct {
	err error
}

func (f fakeCensus) Census(context.Context) (profile.Census, error) {
	if f.err != nil {
		return profile.Census{}, f.err
	}
	return profile.Census{Total: 12, Suspended: 1, Staff: 4}, nil
}

type staticVerifier struct{}

func (staticVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	switch token {
	case "staff":
		return &middleware.AccessTokenClaims{UserID: "staff-1", UserType: core.UserTypeStaff}, nil
	case "admin":
		return &middleware.AccessTokenClaims{UserID: "admin-1", UserType: core.UserTypeAdmin}, nil
	case "public":
		return &middleware.AccessTokenClaims{UserID: "user-1", UserType: core.UserTypePublic}, nil
	}
	return nil, core.ErrTokenInvalid
}

func newRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(
		r,
		middleware.Authenticator(staticVerifier{}, nil),
		middleware.RequireStaff,
		middleware.RequireAdmin,
	)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data OverviewResponse `json:"data"`
}

func TestOverview(t *testing.T) {
	kpis := &fakeKPIs{userID: "unset"}
	h := NewHandler(HandlerConfig{
		KPIs:      kpis,
		Users:     fakeCensus{},
		DBPing:    func(context.Context) error { return nil },
		StorePing: func(context.Context) error { return errors.New("bucket missing") },
	})

	rec := get(newRouter(h), "/admin/overview", "staff")
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Empty(t, kpis.userID)
	assert.Equal(t, 7, body.Data.Permits.Applications.Total)
	assert.Equal(t, 3, body.Data.Permits.PendingIntents)
	require.NotNil(t, body.Data.Users)
	assert.Equal(t, 12, body.Data.Users.Total)
	assert.True(t, body.Data.Services.Database)
	assert.True(t, body.Data.Services.Redis)
	assert.False(t, body.Data.Services.Storage)
}

func TestOverview_CensusFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		KPIs:  &fakeKPIs{},
		Users: fakeCensus{err: errors.New("timeout")},
	})

	rec := get(newRouter(h), "/admin/overview", "admin")
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data.Users)
	assert.Contains(t, body.Data.Permits.Unavailable, "users")
}

func TestRouteAccess(t *testing.T) {
	r := newRouter(NewHandler(HandlerConfig{KPIs: &fakeKPIs{}}))

	tests := []struct {
		path  string
		token string
		want  int
	}{
		{"/admin/overview", "public", http.StatusForbidden},
		{"/admin/overview", "staff", http.StatusOK},
		{"/admin/stats/runtime", "staff", http.StatusForbidden},
		{"/admin/stats/runtime", "admin", http.StatusOK},
		{"/admin/stats", "admin", http.StatusOK},
		{"/admin/stats", "nobody", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.path, tt.token).Code)
		})
	}
}
