// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	UpdateFullName(ctx context.Context, id, fullName string) (*Profile, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	Suspend(ctx context.Context, id, suspendedBy, reason string) (*Profile, error)
	Reactivate(ctx context.Context, id string) (*Profile, error)
	SetUserType(ctx context.Context, id, userType string) (*Profile, error)
	ResetPassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, params ListParams) ([]Profile, int, error)
	Census(ctx context.Context) (Census, error)
}

const profileColumns = `
	id, email, password_hash, full_name, user_type, token_version,
	is_suspended, suspended_at, suspended_by, suspension_reason,
	created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, user_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING token_version, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Email,
		p.PasswordHash,
		p.FullName,
		p.UserType,
	).Scan(&p.TokenVersion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &p, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE email = $1`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &p, nil
}

func (r *repository) UpdateFullName(
	ctx context.Context,
	id, fullName string,
) (*Profile, error) {
	query := `
		UPDATE users
		SET full_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	return r.updateReturning(ctx, "update user", query, id, fullName)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return core.RowsAffected(result, "update password")
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return core.RowsAffected(result, "increment token version")
}

// Suspend writes all four suspension fields in one statement and bumps the
// token version so access tokens already issued stop validating.
func (r *repository) Suspend(
	ctx context.Context,
	id, suspendedBy, reason string,
) (*Profile, error) {
	query := `
		UPDATE users
		SET is_suspended = true,
		    suspended_at = NOW(),
		    suspended_by = $2,
		    suspension_reason = $3,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	return r.updateReturning(ctx, "suspend user", query, id, suspendedBy, reason)
}

func (r *repository) Reactivate(ctx context.Context, id string) (*Profile, error) {
	query := `
		UPDATE users
		SET is_suspended = false,
		    suspended_at = NULL,
		    suspended_by = NULL,
		    suspension_reason = NULL,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	return r.updateReturning(ctx, "reactivate user", query, id)
}

func (r *repository) SetUserType(
	ctx context.Context,
	id, userType string,
) (*Profile, error) {
	query := `
		UPDATE users
		SET user_type = $2,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	return r.updateReturning(ctx, "set user type", query, id, userType)
}

func (r *repository) ResetPassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	return core.RowsAffected(result, "reset password")
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Profile, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR full_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.UserType != "" {
		conditions = append(conditions, fmt.Sprintf("user_type = $%d", argIdx))
		args = append(args, params.UserType)
		argIdx++
	}

	if params.Suspended != nil {
		conditions = append(conditions, fmt.Sprintf("is_suspended = $%d", argIdx))
		args = append(args, *params.Suspended)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		profileColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var profiles []Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return profiles, total, nil
}

func (r *repository) Census(ctx context.Context) (Census, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_suspended) AS suspended,
			COUNT(*) FILTER (WHERE user_type <> 'public') AS staff
		FROM users`

	var c Census
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return Census{}, fmt.Errorf("count users: %w", err)
	}

	return c, nil
}

func (r *repository) updateReturning(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}
