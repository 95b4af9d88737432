// AngelaMos | 2026
// repository.go

package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, params ListParams) ([]Invoice, int, error)
	Recent(ctx context.Context, userID string, limit int) ([]Invoice, error)
	Outstanding(ctx context.Context, userID string) (Outstanding, error)
	SubmitPayment(ctx context.Context, id, reference string) (*Invoice, error)
	VerifyPayment(ctx context.Context, id, verifiedBy string) (*Invoice, error)
	SetFollowUp(ctx context.Context, id string, date time.Time, notes string) (*Invoice, error)
	MarkOverdue(ctx context.Context, id string, asOf time.Time) (*Invoice, error)
	Cancel(ctx context.Context, id string) (*Invoice, error)
}

const invoiceColumns = `
	id, invoice_number, user_id, description, amount, currency, status,
	payment_status, due_date, permit_id, inspection_id, intent_registration_id,
	payment_reference, payment_submitted_at, verified_by, verified_at,
	follow_up_date, follow_up_notes, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (
			id, invoice_number, user_id, description, amount, currency,
			status, payment_status, due_date,
			permit_id, inspection_id, intent_registration_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		inv.ID,
		inv.InvoiceNumber,
		inv.UserID,
		inv.Description,
		inv.Amount,
		inv.Currency,
		inv.Status,
		inv.PaymentStatus,
		inv.DueDate,
		inv.PermitID,
		inv.InspectionID,
		inv.IntentRegistrationID,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create invoice: %w", core.ErrNotFound)
		}
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create invoice: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create invoice: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv Invoice
	err := r.db.GetContext(ctx, &inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invoice: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Invoice, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any

	if params.UserID != "" {
		args = append(args, params.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.PaymentStatus != "" {
		args = append(args, params.PaymentStatus)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM invoices WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		invoiceColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	items := []Invoice{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	return items, total, nil
}

func (r *repository) Recent(
	ctx context.Context,
	userID string,
	limit int,
) ([]Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	items := []Invoice{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent invoices: %w", err)
	}

	return items, nil
}

func (r *repository) Outstanding(
	ctx context.Context,
	userID string,
) (Outstanding, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM invoices
		WHERE ($1 = '' OR user_id::text = $1)
		  AND status IN ('issued', 'overdue')
		  AND payment_status <> 'paid'`

	var out Outstanding
	if err := r.db.GetContext(ctx, &out, query, userID); err != nil {
		return Outstanding{}, fmt.Errorf("outstanding invoices: %w", err)
	}

	return out, nil
}

// The writes below are guarded on the current state. Zero matched rows
// means the invoice is not in a state that allows the change.

func (r *repository) SubmitPayment(
	ctx context.Context,
	id, reference string,
) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET payment_status = 'pending_verification',
		    payment_reference = $2,
		    payment_submitted_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		  AND status IN ('issued', 'overdue')
		  AND payment_status = 'unpaid'
		RETURNING ` + invoiceColumns

	return r.guardedUpdate(ctx, "submit payment", query, id, reference)
}

func (r *repository) VerifyPayment(
	ctx context.Context,
	id, verifiedBy string,
) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET payment_status = 'paid',
		    status = 'paid',
		    verified_by = $2,
		    verified_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		  AND status IN ('issued', 'overdue')
		  AND payment_status = 'pending_verification'
		RETURNING ` + invoiceColumns

	return r.guardedUpdate(ctx, "verify payment", query, id, verifiedBy)
}

func (r *repository) SetFollowUp(
	ctx context.Context,
	id string,
	date time.Time,
	notes string,
) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET follow_up_date = $2,
		    follow_up_notes = $3,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('issued', 'overdue')
		RETURNING ` + invoiceColumns

	return r.guardedUpdate(ctx, "set follow up", query, id, date, notes)
}

func (r *repository) MarkOverdue(
	ctx context.Context,
	id string,
	asOf time.Time,
) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE id = $1
		  AND status = 'issued'
		  AND payment_status <> 'paid'
		  AND due_date < $2
		RETURNING ` + invoiceColumns

	return r.guardedUpdate(ctx, "mark overdue", query, id, asOf)
}

func (r *repository) Cancel(ctx context.Context, id string) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		  AND status IN ('issued', 'overdue')
		  AND payment_status = 'unpaid'
		RETURNING ` + invoiceColumns

	return r.guardedUpdate(ctx, "cancel invoice", query, id)
}

func (r *repository) guardedUpdate(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Invoice, error) {
	var inv Invoice
	err := r.db.GetContext(ctx, &inv, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &inv, nil
}
