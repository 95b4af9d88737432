// AngelaMos | 2026
// repository.go

package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e *Entity) error
	GetByID(ctx context.Context, id string) (*Entity, error)
	Update(ctx context.Context, id string, name, address *string) (*Entity, error)
	SetSuspended(ctx context.Context, id string, suspended bool) (*Entity, error)
	List(ctx context.Context, params ListParams) ([]Entity, int, error)
}

const entityColumns = `
	id, user_id, name, entity_type, registration_number, address,
	is_suspended, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Entity) error {
	query := `
		INSERT INTO entities (
			id, user_id, name, entity_type, registration_number, address
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_suspended, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		e.ID,
		e.UserID,
		e.Name,
		e.EntityType,
		e.RegistrationNumber,
		e.Address,
	).Scan(&e.IsSuspended, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create entity: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create entity: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`

	var e Entity
	err := r.db.GetContext(ctx, &e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entity: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}

	return &e, nil
}

func (r *repository) Update(
	ctx context.Context,
	id string,
	name, address *string,
) (*Entity, error) {
	query := `
		UPDATE entities
		SET name = COALESCE($2, name),
		    address = COALESCE($3, address),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + entityColumns

	return r.updateReturning(ctx, "update entity", query, id, name, address)
}

func (r *repository) SetSuspended(
	ctx context.Context,
	id string,
	suspended bool,
) (*Entity, error) {
	query := `
		UPDATE entities
		SET is_suspended = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + entityColumns

	return r.updateReturning(ctx, "set entity suspended", query, id, suspended)
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Entity, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR registration_number ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM entities WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entities: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM entities
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		entityColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	entities := []Entity{}
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list entities: %w", err)
	}

	return entities, total, nil
}

func (r *repository) updateReturning(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Entity, error) {
	var e Entity
	err := r.db.GetContext(ctx, &e, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}
