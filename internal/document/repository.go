// AngelaMos | 2026
// repository.go

package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	ListDrafts(ctx context.Context, userID, category string) ([]Document, error)
	ListForParent(ctx context.Context, parent Parent) ([]Document, error)
	CountByStorageKey(ctx context.Context, storageKey string) (int, error)
	DeleteDraft(ctx context.Context, id string) error
}

const documentColumns = `
	id, user_id, filename, storage_key, file_size_bytes, mime_type,
	document_type, state, draft_category, parent_kind, parent_id, uploaded_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, user_id, filename, storage_key, file_size_bytes, mime_type,
			document_type, state, draft_category, parent_kind, parent_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING uploaded_at`

	err := r.db.GetContext(ctx, &doc.UploadedAt, query,
		doc.ID,
		doc.UserID,
		doc.Filename,
		doc.StorageKey,
		doc.FileSizeBytes,
		doc.MimeType,
		doc.DocumentType,
		doc.State,
		doc.DraftCategory,
		doc.ParentKind,
		doc.ParentID,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var doc Document
	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

func (r *repository) ListDrafts(
	ctx context.Context,
	userID, category string,
) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1 AND state = 'draft' AND draft_category = $2
		ORDER BY uploaded_at ASC`

	docs := []Document{}
	if err := r.db.SelectContext(ctx, &docs, query, userID, category); err != nil {
		return nil, fmt.Errorf("list draft documents: %w", err)
	}

	return docs, nil
}

func (r *repository) ListForParent(
	ctx context.Context,
	parent Parent,
) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE state = 'linked' AND parent_kind = $1 AND parent_id = $2
		ORDER BY uploaded_at DESC`

	docs := []Document{}
	if err := r.db.SelectContext(
		ctx,
		&docs,
		query,
		string(parent.Kind),
		parent.ID,
	); err != nil {
		return nil, fmt.Errorf("list parent documents: %w", err)
	}

	return docs, nil
}

func (r *repository) CountByStorageKey(
	ctx context.Context,
	storageKey string,
) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE storage_key = $1`

	var n int
	if err := r.db.GetContext(ctx, &n, query, storageKey); err != nil {
		return 0, fmt.Errorf("count documents by key: %w", err)
	}

	return n, nil
}

// DeleteDraft removes a draft record only. Linked records are never
// matched, and the blob is left alone.
func (r *repository) DeleteDraft(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1 AND state = 'draft'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete draft document: %w", err)
	}

	return core.RowsAffected(result, "delete draft document")
}
