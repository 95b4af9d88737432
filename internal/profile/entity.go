// AngelaMos | 2026
// entity.go

package profile

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Profile struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	FullName         string     `db:"full_name"`
	UserType         string     `db:"user_type"`
	TokenVersion     int        `db:"token_version"`
	IsSuspended      bool       `db:"is_suspended"`
	SuspendedAt      *time.Time `db:"suspended_at"`
	SuspendedBy      *string    `db:"suspended_by"`
	SuspensionReason *string    `db:"suspension_reason"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// IsProtected reports whether the account is exempt from suspension.
func (p *Profile) IsProtected() bool {
	return p.UserType == core.UserTypeSuperAdmin
}

func (p *Profile) IsAdmin() bool {
	return p.UserType == core.UserTypeAdmin ||
		p.UserType == core.UserTypeSuperAdmin
}

func ValidUserType(userType string) bool {
	switch userType {
	case core.UserTypePublic,
		core.UserTypeStaff,
		core.UserTypeAdmin,
		core.UserTypeSuperAdmin:
		return true
	}
	return false
}
