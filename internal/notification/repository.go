// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, params ListParams) ([]Notification, int, error)
	Recent(ctx context.Context, userID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

const notificationColumns = `
	id, user_id, title, message, severity, is_read, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, severity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_read, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Severity,
	).Scan(&n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Notification, int, error) {
	params.Normalize()

	where := "user_id = $1"
	if params.UnreadOnly {
		where += " AND is_read = false"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	items := []Notification{}
	if err := r.db.SelectContext(
		ctx,
		&items,
		query,
		userID,
		params.PageSize,
		params.Offset(),
	); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return items, total, nil
}

func (r *repository) Recent(
	ctx context.Context,
	userID string,
	limit int,
) ([]Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	items := []Notification{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent notifications: %w", err)
	}

	return items, nil
}

func (r *repository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`

	var n int
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return n, nil
}

func (r *repository) MarkRead(ctx context.Context, userID, id string) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return core.RowsAffected(result, "mark notification read")
}

func (r *repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE user_id = $1 AND is_read = false`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return n, nil
}
