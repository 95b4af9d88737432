// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/config"
	"github.com/carterperez-dev/permitdesk/internal/core"
)

func newTestJWTManager(t *testing.T, accessTTL time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  accessTTL,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "permitdesk",
		Audience:           "permitdesk-api",
	})
	require.NoError(t, err)
	return m
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-1",
		UserType:     core.UserTypeStaff,
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, core.UserTypeStaff, claims.UserType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.JTI)
}

func TestJWTManager_RejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t, 15*time.Minute)
	verifier := newTestJWTManager(t, 15*time.Minute)

	token, err := issuer.CreateAccessToken(AccessTokenClaims{
		UserID:   "user-1",
		UserType: core.UserTypePublic,
	})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	_, err := m.VerifyAccessToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_RefreshToken(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	data, err := m.CreateRefreshToken("user-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, data.FamilyID)
	assert.True(t, m.VerifyRefreshTokenHash(data.Token, data.Hash))
	assert.False(t, m.VerifyRefreshTokenHash("other", data.Hash))

	same, err := m.CreateRefreshToken("user-1", data.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, data.FamilyID, same.FamilyID)
}

func TestJWTManager_JWKSHandler(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), m.GetKeyID())
	assert.NotContains(t, rec.Body.String(), `"d"`)
}
