// AngelaMos | 2026
// dto.go

package profile

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
}

type SetSuspensionRequest struct {
	Suspended *bool  `json:"suspended" validate:"required"`
	Reason    string `json:"reason"    validate:"max=500"`
}

type ChangeUserTypeRequest struct {
	UserType string `json:"user_type" validate:"required,oneof=public staff admin super_admin"`
}

type ResetPasswordResponse struct {
	UserID            string `json:"user_id"`
	TemporaryPassword string `json:"temporary_password"`
}

type ProfileResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	UserType         string     `json:"user_type"`
	IsSuspended      bool       `json:"is_suspended"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	SuspendedBy      *string    `json:"suspended_by,omitempty"`
	SuspensionReason *string    `json:"suspension_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Census is the user headcount shown on the staff overview. Staff counts
// every non-public account.
type Census struct {
	Total     int `db:"total"     json:"total"`
	Suspended int `db:"suspended" json:"suspended"`
	Staff     int `db:"staff"     json:"staff"`
}

type ListParams struct {
	core.PageParams
	Search    string
	UserType  string
	Suspended *bool
}

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		UserType:         p.UserType,
		IsSuspended:      p.IsSuspended,
		SuspendedAt:      p.SuspendedAt,
		SuspendedBy:      p.SuspendedBy,
		SuspensionReason: p.SuspensionReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ToProfileResponseList(profiles []Profile) []ProfileResponse {
	responses := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, ToProfileResponse(&profiles[i]))
	}
	return responses
}
