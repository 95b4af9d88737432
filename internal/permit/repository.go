// AngelaMos | 2026
// repository.go

package permit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	CreateIntent(ctx context.Context, i *IntentRegistration) error
	GetIntent(ctx context.Context, id string) (*IntentRegistration, error)
	ListIntents(ctx context.Context, params ListParams) ([]IntentRegistration, int, error)
	TransitionIntent(ctx context.Context, t IntentTransition) (*IntentRegistration, error)

	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id string) (*Application, error)
	ListApplications(ctx context.Context, params ListParams) ([]Application, int, error)
	TransitionApplication(ctx context.Context, t ApplicationTransition) (*Application, error)
	ListAssessments(ctx context.Context, applicationID string) ([]Assessment, error)

	RecentApplicationActivity(ctx context.Context, userID string, limit int) ([]ApplicationActivity, error)
	CountApplicationsByStatus(ctx context.Context, userID string) (map[string]int, error)
	CountIntentsByStatus(ctx context.Context, userID string) (map[string]int, error)
}

const intentColumns = `
	id, user_id, entity_id, activity_level, activity_description,
	preparatory_work_description, location_description,
	commencement_date, completion_date, status,
	review_notes, reviewed_by, reviewed_at, created_at, updated_at`

const applicationColumns = `
	id, user_id, entity_id, title, permit_type, description,
	commencement_date, completion_date, status, permit_number,
	submitted_at, decided_at, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateIntent(ctx context.Context, i *IntentRegistration) error {
	query := `
		INSERT INTO intent_registrations (
			id, user_id, entity_id, activity_level, activity_description,
			preparatory_work_description, location_description,
			commencement_date, completion_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		i.ID,
		i.UserID,
		i.EntityID,
		i.ActivityLevel,
		i.ActivityDescription,
		i.PreparatoryWorkDescription,
		i.LocationDescription,
		i.CommencementDate,
		i.CompletionDate,
		i.Status,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create intent: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create intent: %w", err)
	}

	return nil
}

func (r *repository) GetIntent(
	ctx context.Context,
	id string,
) (*IntentRegistration, error) {
	query := `SELECT ` + intentColumns + ` FROM intent_registrations WHERE id = $1`

	var i IntentRegistration
	err := r.db.GetContext(ctx, &i, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get intent: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}

	return &i, nil
}

func (r *repository) ListIntents(
	ctx context.Context,
	params ListParams,
) ([]IntentRegistration, int, error) {
	whereClause, args := params.where()

	var total int
	countQuery := "SELECT COUNT(*) FROM intent_registrations WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count intents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM intent_registrations
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		intentColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	items := []IntentRegistration{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list intents: %w", err)
	}

	return items, total, nil
}

// TransitionIntent moves an intent out of t.From. Zero matched rows means
// another writer changed the status first.
func (r *repository) TransitionIntent(
	ctx context.Context,
	t IntentTransition,
) (*IntentRegistration, error) {
	query := `
		UPDATE intent_registrations
		SET status = $3,
		    review_notes = NULLIF($4, ''),
		    reviewed_by = $5,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + intentColumns

	var i IntentRegistration
	err := r.db.GetContext(ctx, &i, query, t.ID, t.From, t.To, t.Notes, t.ReviewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition intent: %w", core.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("transition intent: %w", err)
	}

	return &i, nil
}

func (r *repository) CreateApplication(ctx context.Context, a *Application) error {
	query := `
		INSERT INTO permit_applications (
			id, user_id, entity_id, title, permit_type, description,
			commencement_date, completion_date, status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING submitted_at, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID,
		a.UserID,
		a.EntityID,
		a.Title,
		a.PermitType,
		a.Description,
		a.CommencementDate,
		a.CompletionDate,
		a.Status,
	).Scan(&a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create application: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

func (r *repository) GetApplication(
	ctx context.Context,
	id string,
) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM permit_applications WHERE id = $1`

	var a Application
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get application: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	return &a, nil
}

func (r *repository) ListApplications(
	ctx context.Context,
	params ListParams,
) ([]Application, int, error) {
	whereClause, args := params.where()

	var total int
	countQuery := "SELECT COUNT(*) FROM permit_applications WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM permit_applications
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`,
		applicationColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	items := []Application{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	return items, total, nil
}

// TransitionApplication applies the guarded status update and, when
// present, inserts the assessment row in the same transaction.
func (r *repository) TransitionApplication(
	ctx context.Context,
	t ApplicationTransition,
) (*Application, error) {
	query := `
		UPDATE permit_applications
		SET status = $3,
		    permit_number = COALESCE($4, permit_number),
		    submitted_at = CASE WHEN $5 THEN NOW() ELSE submitted_at END,
		    decided_at = CASE WHEN $6 THEN NOW() ELSE decided_at END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + applicationColumns

	var a Application
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &a, query,
			t.ID,
			t.From,
			t.To,
			t.PermitNumber,
			t.To == AppSubmitted,
			IsFinalApplicationStatus(t.To),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transition application: %w", core.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("transition application: %w", err)
		}

		if t.Assessment == nil {
			return nil
		}

		insert := `
			INSERT INTO assessments (
				id, application_id, assessor_id, from_status, to_status, feedback
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`

		as := t.Assessment
		if err := tx.QueryRowxContext(ctx, insert,
			as.ID,
			as.ApplicationID,
			as.AssessorID,
			as.FromStatus,
			as.ToStatus,
			as.Feedback,
		).Scan(&as.CreatedAt); err != nil {
			return fmt.Errorf("create assessment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *repository) ListAssessments(
	ctx context.Context,
	applicationID string,
) ([]Assessment, error) {
	query := `
		SELECT id, application_id, assessor_id, from_status, to_status,
		       feedback, created_at
		FROM assessments
		WHERE application_id = $1
		ORDER BY created_at DESC`

	items := []Assessment{}
	if err := r.db.SelectContext(ctx, &items, query, applicationID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}

	return items, nil
}

func (r *repository) RecentApplicationActivity(
	ctx context.Context,
	userID string,
	limit int,
) ([]ApplicationActivity, error) {
	query := `
		SELECT ` + applicationColumns + `,
		       (SELECT s.feedback
		        FROM assessments s
		        WHERE s.application_id = a.id
		        ORDER BY s.created_at DESC
		        LIMIT 1) AS latest_feedback
		FROM permit_applications a
		WHERE a.user_id = $1
		ORDER BY a.updated_at DESC
		LIMIT $2`

	items := []ApplicationActivity{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent application activity: %w", err)
	}

	return items, nil
}

func (r *repository) CountApplicationsByStatus(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	return r.countByStatus(ctx, "permit_applications", userID)
}

func (r *repository) CountIntentsByStatus(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	return r.countByStatus(ctx, "intent_registrations", userID)
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// countByStatus groups the user's rows by status. An empty userID counts
// every row.
func (r *repository) countByStatus(
	ctx context.Context,
	table, userID string,
) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM ` + table + `
		WHERE ($1 = '' OR user_id::text = $1)
		GROUP BY status`

	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (p *ListParams) where() (string, []any) {
	p.Normalize()

	conditions := []string{"TRUE"}
	var args []any

	if p.UserID != "" {
		args = append(args, p.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if p.Status != "" {
		args = append(args, p.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}
