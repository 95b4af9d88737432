// AngelaMos | 2026
// entity.go

package auth

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

// RefreshToken is one link in a sign-in's rotation chain. Every token
// minted by rotating the same sign-in shares a FamilyID, so replaying a
// spent link can revoke the whole device.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

// Redeemable returns nil when the token may be exchanged at now. A spent
// token reports reuse even when it has since been revoked or expired.
func (t *RefreshToken) Redeemable(now time.Time) error {
	switch {
	case t.IsUsed:
		return ErrTokenReuse
	case t.Revoked():
		return fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case !now.Before(t.ExpiresAt):
		return fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}
	return nil
}

func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Active reports whether the token still represents a signed-in device.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.Redeemable(now) == nil
}

func (t *RefreshToken) Rotate(replacedByID string, at time.Time) {
	t.IsUsed = true
	t.UsedAt = &at
	t.ReplacedByID = &replacedByID
}

func (t *RefreshToken) Revoke(at time.Time) {
	if t.RevokedAt == nil {
		t.RevokedAt = &at
	}
}

func (t *RefreshToken) Session() SessionInfo {
	return SessionInfo{
		ID:        t.ID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
