// AngelaMos | 2026
// entity_test.go

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

func TestRefreshToken_Redeemable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name  string
		token RefreshToken
		want  error
	}{
		{
			name:  "fresh token",
			token: RefreshToken{ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:  "expires exactly now",
			token: RefreshToken{ExpiresAt: now},
			want:  core.ErrTokenExpired,
		},
		{
			name:  "revoked",
			token: RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &earlier},
			want:  core.ErrTokenRevoked,
		},
		{
			name: "spent and revoked reports reuse",
			token: RefreshToken{
				ExpiresAt: now.Add(-time.Minute),
				IsUsed:    true,
				RevokedAt: &earlier,
			},
			want: ErrTokenReuse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.token.Redeemable(now)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, tt.token.Active(now))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, tt.token.Active(now))
		})
	}
}

func TestRefreshToken_RotateAndRevoke(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Minute)

	tok := RefreshToken{ID: "tok-1", ExpiresAt: first.Add(time.Hour)}

	tok.Rotate("tok-2", first)
	assert.True(t, tok.IsUsed)
	assert.Equal(t, "tok-2", *tok.ReplacedByID)
	assert.Equal(t, first, *tok.UsedAt)

	tok.Revoke(first)
	tok.Revoke(later)
	assert.True(t, tok.Revoked())
	assert.Equal(t, first, *tok.RevokedAt)
}

func TestRefreshToken_Session(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := RefreshToken{
		ID:        "tok-1",
		TokenHash: "secret-hash",
		UserAgent: "permit-portal/1.0",
		IPAddress: "203.0.113.9",
		CreatedAt: created,
		ExpiresAt: created.Add(24 * time.Hour),
	}

	assert.Equal(t, SessionInfo{
		ID:        "tok-1",
		UserAgent: "permit-portal/1.0",
		IPAddress: "203.0.113.9",
		CreatedAt: created,
		ExpiresAt: created.Add(24 * time.Hour),
	}, tok.Session())
}
