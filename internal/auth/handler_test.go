// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *core.ErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (chi.Router, *Service, *memUsers) {
	t.Helper()
	svc, users, _ := newTestService(t)

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc.jwt, svc))
	return r, svc, users
}

func send(
	t *testing.T,
	r http.Handler,
	method, path, token, body string,
) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.7")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

const registerBody = `{"email":"applicant@example.com","password":"s3cret-password","name":"Applicant"}`

func TestHandler_RegisterAndMe(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec, env := send(t, r, http.MethodPost, "/auth/register", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.False(t, auth.User.IsStaff)
	assert.False(t, auth.User.IsAdmin)

	rec, env = send(t, r, http.MethodGet, "/auth/me", auth.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var me UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, auth.User.ID, me.ID)
	assert.Equal(t, core.UserTypePublic, me.UserType)

	rec, env = send(t, r, http.MethodGet, "/auth/sessions", auth.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions SessionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	require.Len(t, sessions.Sessions, 1)
	assert.Equal(t, "203.0.113.7", sessions.Sessions[0].IPAddress)
}

func TestHandler_ErrorMapping(t *testing.T) {
	r, _, users := newTestRouter(t)

	rec, env := send(t, r, http.MethodPost, "/auth/register", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))

	t.Run("duplicate email", func(t *testing.T) {
		rec, env := send(t, r, http.MethodPost, "/auth/register", "", registerBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EMAIL_EXISTS", env.Error.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, env := send(t, r, http.MethodPost, "/auth/login", "",
			`{"email":"applicant@example.com","password":"not-the-password"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	})

	t.Run("invalid body is unprocessable", func(t *testing.T) {
		rec, env := send(t, r, http.MethodPost, "/auth/login", "",
			`{"email":"not-an-email","password":"short"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		rec, _ := send(t, r, http.MethodPost, "/auth/login", "",
			`{"email":"applicant@example.com","password":"s3cret-password","admin":true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("current password mismatch", func(t *testing.T) {
		rec, env := send(t, r, http.MethodPost, "/auth/change-password", auth.Tokens.AccessToken,
			`{"current_password":"not-the-password","new_password":"brand-new-password"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "WRONG_PASSWORD", env.Error.Code)
	})

	t.Run("refresh token reuse", func(t *testing.T) {
		body := `{"refresh_token":"` + auth.Tokens.RefreshToken + `"}`

		rec, _ := send(t, r, http.MethodPost, "/auth/refresh", "", body)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, env := send(t, r, http.MethodPost, "/auth/refresh", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REUSE_DETECTED", env.Error.Code)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		rec, env := send(t, r, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_INVALID", env.Error.Code)
	})

	t.Run("suspended account", func(t *testing.T) {
		users.suspend(auth.User.ID)
		rec, env := send(t, r, http.MethodPost, "/auth/login", "",
			`{"email":"applicant@example.com","password":"s3cret-password"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "ACCOUNT_SUSPENDED", env.Error.Code)
	})
}

func TestHandler_RequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec, env := send(t, r, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}
