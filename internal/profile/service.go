// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/permitdesk/internal/auth"
	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/metrics"
)

var (
	ErrProtectedAccount = core.NewAppError(
		core.ErrForbidden,
		"super admin accounts cannot be suspended or reactivated",
		http.StatusForbidden,
		"PROTECTED_ACCOUNT",
	)
	ErrReasonRequired = core.NewAppError(
		core.ErrInvalidInput,
		"a suspension reason is required",
		http.StatusUnprocessableEntity,
		"REASON_REQUIRED",
	)
	ErrSelfSuspension = core.NewAppError(
		core.ErrForbidden,
		"you cannot suspend your own account",
		http.StatusForbidden,
		"SELF_SUSPENSION",
	)
	ErrSuspendedPromotion = core.NewAppError(
		core.ErrConflict,
		"reactivate the account before promoting it to super admin",
		http.StatusConflict,
		"SUSPENDED_PROMOTION",
	)
	ErrSelfTypeChange = core.NewAppError(
		core.ErrForbidden,
		"you cannot change your own user type",
		http.StatusForbidden,
		"SELF_TYPE_CHANGE",
	)
)

const temporaryPasswordLength = 16

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SetSuspension suspends or reactivates targetID. Super admins are never
// touched and a suspension needs a non-blank reason; both are checked
// before anything is written. Concurrent admins race with last write wins.
func (s *Service) SetSuspension(
	ctx context.Context,
	actor core.Actor,
	targetID string,
	suspend bool,
	reason string,
) (*Profile, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("set suspension: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsProtected() {
		return nil, ErrProtectedAccount
	}

	reason = strings.TrimSpace(reason)
	if suspend && reason == "" {
		return nil, ErrReasonRequired
	}

	if suspend && actor.ID == targetID {
		return nil, ErrSelfSuspension
	}

	if !suspend {
		updated, err := s.repo.Reactivate(ctx, targetID)
		if err != nil {
			return nil, err
		}

		metrics.ObserveSuspension("reactivate")
		s.logger.InfoContext(ctx, "user reactivated",
			"user_id", targetID,
			"actor_id", actor.ID,
		)
		return updated, nil
	}

	updated, err := s.repo.Suspend(ctx, targetID, actor.ID, reason)
	if err != nil {
		return nil, err
	}

	metrics.ObserveSuspension("suspend")
	s.logger.InfoContext(ctx, "user suspended",
		"user_id", targetID,
		"actor_id", actor.ID,
		"reason", reason,
	)
	return updated, nil
}

// ChangeUserType moves targetID to userType. Only super admins may grant
// or revoke admin-level types.
func (s *Service) ChangeUserType(
	ctx context.Context,
	actor core.Actor,
	targetID, userType string,
) (*Profile, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("change user type: %w", core.ErrForbidden)
	}

	if !ValidUserType(userType) {
		return nil, fmt.Errorf(
			"change user type: invalid user type %q: %w",
			userType,
			core.ErrInvalidInput,
		)
	}

	if actor.ID == targetID {
		return nil, ErrSelfTypeChange
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	adminLevel := userType == core.UserTypeAdmin ||
		userType == core.UserTypeSuperAdmin
	if (adminLevel || target.IsAdmin()) && !actor.IsSuperAdmin() {
		return nil, fmt.Errorf(
			"change user type: admin types require a super admin: %w",
			core.ErrForbidden,
		)
	}

	if userType == core.UserTypeSuperAdmin && target.IsSuspended {
		return nil, ErrSuspendedPromotion
	}

	if target.UserType == userType {
		return target, nil
	}

	updated, err := s.repo.SetUserType(ctx, targetID, userType)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user type changed",
		"user_id", targetID,
		"actor_id", actor.ID,
		"from", target.UserType,
		"to", userType,
	)
	return updated, nil
}

// ResetPassword replaces the target's password with a generated one and
// returns it. The plain value is never stored.
func (s *Service) ResetPassword(
	ctx context.Context,
	actor core.Actor,
	targetID string,
) (string, error) {
	if !actor.IsAdmin() {
		return "", fmt.Errorf("reset password: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}

	if target.IsProtected() && !actor.IsSuperAdmin() {
		return "", ErrProtectedAccount
	}

	temp, err := core.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	hash, err := core.HashPassword(temp)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	if err := s.repo.ResetPassword(ctx, targetID, hash); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "password reset by admin",
		"user_id", targetID,
		"actor_id", actor.ID,
	)
	return temp, nil
}

func (s *Service) GetMe(ctx context.Context, actor core.Actor) (*Profile, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, actor.ID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	actor core.Actor,
	req UpdateProfileRequest,
) (*Profile, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	if req.FullName == nil {
		return s.repo.GetByID(ctx, actor.ID)
	}

	return s.repo.UpdateFullName(ctx, actor.ID, strings.TrimSpace(*req.FullName))
}

func (s *Service) GetUser(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Profile, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("get user: %w", core.ErrForbidden)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Profile, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("list users: %w", core.ErrForbidden)
	}
	return s.repo.List(ctx, params)
}

func (s *Service) Census(ctx context.Context) (Census, error) {
	return s.repo.Census(ctx)
}

// The methods below make Service the auth.UserProvider.

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(p), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	p, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(p), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	p := &Profile{
		ID:           core.NewID(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(name),
		UserType:     core.UserTypePublic,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return toUserInfo(p), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(p *Profile) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           p.ID,
		Email:        p.Email,
		Name:         p.FullName,
		PasswordHash: p.PasswordHash,
		UserType:     p.UserType,
		TokenVersion: p.TokenVersion,
		IsSuspended:  p.IsSuspended,
		CreatedAt:    p.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
