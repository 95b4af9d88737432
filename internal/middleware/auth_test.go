// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type fakeVerifier map[string]*AccessTokenClaims

func (f fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return claims, nil
}

type fakeSessions struct {
	err error
}

func (f fakeSessions) ValidateSession(context.Context, *AccessTokenClaims) error {
	return f.err
}

var tokens = fakeVerifier{
	"public-token": {UserID: "user-1", UserType: core.UserTypePublic},
	"staff-token":  {UserID: "staff-1", UserType: core.UserTypeStaff},
	"admin-token":  {UserID: "admin-1", UserType: core.UserTypeAdmin},
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := GetActor(r.Context())
		w.Header().Set("X-Actor", actor.ID+"/"+actor.UserType)
		w.WriteHeader(http.StatusOK)
	})
}

func request(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		sessionErr error
		wantStatus int
		wantActor  string
	}{
		{"missing token", "", nil, http.StatusUnauthorized, ""},
		{"unknown token", "forged", nil, http.StatusUnauthorized, ""},
		{"valid token", "public-token", nil, http.StatusOK, "user-1/public"},
		{"suspended account", "public-token", core.ErrAccountLocked, http.StatusForbidden, ""},
		{"revoked session", "public-token", core.ErrTokenRevoked, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tokens, fakeSessions{err: tt.sessionErr})(echoActor())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(tt.token))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, rec.Header().Get("X-Actor"))
		})
	}
}

func TestRequireUserType(t *testing.T) {
	tests := []struct {
		name       string
		guard      func(http.Handler) http.Handler
		token      string
		wantStatus int
	}{
		{"staff route allows staff", RequireStaff, "staff-token", http.StatusOK},
		{"staff route allows admin", RequireStaff, "admin-token", http.StatusOK},
		{"staff route rejects public", RequireStaff, "public-token", http.StatusForbidden},
		{"admin route rejects staff", RequireAdmin, "staff-token", http.StatusForbidden},
		{"admin route allows admin", RequireAdmin, "admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tokens, nil)(tt.guard(echoActor()))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(tt.token))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireUserType_Unauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireStaff(echoActor()).ServeHTTP(rec, request(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, ExtractToken(req), tt.header)
	}
}
