// AngelaMos | 2026
// service.go

package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/permitdesk/internal/config"
	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/metrics"
	"github.com/carterperez-dev/permitdesk/internal/storage"
)

var (
	ErrDocumentLinked = core.NewAppError(
		core.ErrConflict,
		"linked documents cannot be deleted",
		http.StatusConflict,
		"DOCUMENT_LINKED",
	)
	ErrFileTooLarge = core.NewAppError(
		core.ErrInvalidInput,
		"file exceeds the maximum upload size",
		http.StatusRequestEntityTooLarge,
		"FILE_TOO_LARGE",
	)
	ErrEmptyFile = core.NewAppError(
		core.ErrInvalidInput,
		"file is empty",
		http.StatusUnprocessableEntity,
		"EMPTY_FILE",
	)
	ErrUnsupportedType = core.NewAppError(
		core.ErrInvalidInput,
		"file type is not allowed",
		http.StatusUnsupportedMediaType,
		"UNSUPPORTED_FILE_TYPE",
	)
	ErrInvalidCategory = core.NewAppError(
		core.ErrInvalidInput,
		"unknown draft category or category does not match the parent",
		http.StatusUnprocessableEntity,
		"INVALID_CATEGORY",
	)
)

const sniffLen = 3072

// ParentChecker confirms the actor may attach documents to, or read the
// documents of, a parent record.
type ParentChecker interface {
	CheckParentAccess(ctx context.Context, actor core.Actor, parent Parent) error
}

type Service struct {
	repo    Repository
	store   storage.ObjectStore
	parents ParentChecker
	cfg     config.DocumentsConfig
	allowed map[string]struct{}
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	store storage.ObjectStore,
	parents ParentChecker,
	cfg config.DocumentsConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedMimeTypes))
	for _, m := range cfg.AllowedMimeTypes {
		allowed[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}

	return &Service{
		repo:    repo,
		store:   store,
		parents: parents,
		cfg:     cfg,
		allowed: allowed,
		logger:  logger,
	}
}

// Upload writes the blob first and the record second. If the record
// cannot be written the blob is removed on a best-effort basis.
func (s *Service) Upload(
	ctx context.Context,
	actor core.Actor,
	in UploadInput,
) (*Document, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("upload document: %w", core.ErrUnauthorized)
	}

	core.TagSpan(ctx, actor,
		attribute.String("permitdesk.document.type", in.DocumentType),
		attribute.Int64("permitdesk.document.size", in.Size),
	)

	if in.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if in.Size > s.cfg.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	doc := &Document{
		ID:            core.NewID(),
		UserID:        actor.ID,
		Filename:      storage.SanitizeFilename(in.Filename),
		FileSizeBytes: in.Size,
		DocumentType:  strings.TrimSpace(in.DocumentType),
	}

	if in.Parent != nil {
		if !in.Parent.Valid() {
			return nil, ErrInvalidCategory
		}
		if err := s.checkParent(ctx, actor, *in.Parent); err != nil {
			return nil, err
		}
		kind, id := string(in.Parent.Kind), in.Parent.ID
		doc.State = StateLinked
		doc.ParentKind = &kind
		doc.ParentID = &id
	} else {
		if !ValidCategory(in.DraftCategory) {
			return nil, ErrInvalidCategory
		}
		category := in.DraftCategory
		doc.State = StateDraft
		doc.DraftCategory = &category
	}

	mimeType, err := s.sniff(in.Body)
	if err != nil {
		return nil, err
	}
	doc.MimeType = mimeType
	doc.StorageKey = storage.NewKey(actor.ID, doc.Filename)

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("upload document: %w: %w", core.ErrInvalidInput, err)
	}

	if err := s.store.Put(ctx, doc.StorageKey, in.Body, in.Size, mimeType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, doc.StorageKey); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned blob after failed document insert",
				"storage_key", doc.StorageKey,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"user_id", actor.ID,
		"state", doc.State,
		"mime_type", mimeType,
		"size", in.Size,
	)
	return doc, nil
}

// sniff detects the content type from the head of body and rewinds it so
// the whole stream can be stored.
func (s *Service) sniff(body io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	detected := mimetype.Detect(head[:n])
	for m := detected; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		if _, ok := s.allowed[strings.TrimSpace(base)]; ok {
			baseDetected, _, _ := strings.Cut(detected.String(), ";")
			return baseDetected, nil
		}
	}

	return "", ErrUnsupportedType
}

func (s *Service) ListDrafts(
	ctx context.Context,
	actor core.Actor,
	category string,
) ([]Document, error) {
	if !ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	return s.repo.ListDrafts(ctx, actor.ID, category)
}

// LinkDrafts attaches every draft of category owned by actor to parent.
// For each draft a linked record is created first; only then is the draft
// record deleted. A failed create leaves the draft and counts as failed.
// A failed delete is logged and the document still counts as linked,
// leaving a harmless duplicate. The blob is never touched.
func (s *Service) LinkDrafts(
	ctx context.Context,
	actor core.Actor,
	category string,
	parent Parent,
) (LinkResult, error) {
	var result LinkResult

	kind, ok := ParentKindFor(category)
	if !ok || kind != parent.Kind || !parent.Valid() {
		return result, ErrInvalidCategory
	}

	if err := s.checkParent(ctx, actor, parent); err != nil {
		return result, err
	}

	drafts, err := s.repo.ListDrafts(ctx, actor.ID, category)
	if err != nil {
		return result, err
	}

	for i := range drafts {
		draft := &drafts[i]
		linked := draft.LinkedCopy(core.NewID(), parent)

		if err := s.repo.Create(ctx, linked); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, LinkFailure{
				DocumentID: draft.ID,
				Filename:   draft.Filename,
				Reason:     "could not create linked record",
			})
			metrics.ObserveDocumentLink(category, "create_failed")
			s.logger.ErrorContext(ctx, "link document failed",
				"document_id", draft.ID,
				"parent", parent.String(),
				"error", err,
			)
			continue
		}

		if err := s.repo.DeleteDraft(ctx, draft.ID); err != nil {
			metrics.ObserveDocumentLink(category, "cleanup_failed")
			s.logger.WarnContext(ctx, "draft cleanup failed after link",
				"document_id", draft.ID,
				"linked_id", linked.ID,
				"error", err,
			)
		} else {
			metrics.ObserveDocumentLink(category, "linked")
		}

		result.Linked++
	}

	core.AddSpanEvent(ctx, "documents.linked",
		attribute.String("category", category),
		attribute.String("parent", parent.String()),
		attribute.Int("linked", result.Linked),
		attribute.Int("failed", result.Failed),
	)

	if result.Partial() {
		s.logger.WarnContext(ctx, "partial link failure",
			"parent", parent.String(),
			"linked", result.Linked,
			"failed", result.Failed,
		)
	}

	return result, nil
}

func (s *Service) Get(ctx context.Context, actor core.Actor, id string) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(doc.UserID) {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}

	return doc, nil
}

// Delete removes an unlinked document: blob first, then record. A blob
// failure aborts and leaves the record in place. When another record still
// references the same blob only the record is removed.
func (s *Service) Delete(ctx context.Context, actor core.Actor, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if doc.UserID != actor.ID {
		return fmt.Errorf("delete document: %w", core.ErrNotFound)
	}

	if !doc.IsDraft() {
		return ErrDocumentLinked
	}

	refs, err := s.repo.CountByStorageKey(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	if refs <= 1 {
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("delete document blob: %w", err)
		}
	}

	if err := s.repo.DeleteDraft(ctx, doc.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "document deleted",
		"document_id", doc.ID,
		"user_id", actor.ID,
		"blob_removed", refs <= 1,
	)
	return nil
}

// Download opens the blob of a document the actor may read. The caller
// closes the returned object body.
func (s *Service) Download(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Document, *storage.Object, error) {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, fmt.Errorf("download document: %w", core.ErrNotFound)
		}
		return nil, nil, err
	}

	return doc, obj, nil
}

func (s *Service) ListForParent(
	ctx context.Context,
	actor core.Actor,
	parent Parent,
) ([]Document, error) {
	if !parent.Valid() {
		return nil, ErrInvalidCategory
	}

	if err := s.checkParent(ctx, actor, parent); err != nil {
		return nil, err
	}

	return s.repo.ListForParent(ctx, parent)
}

func (s *Service) checkParent(ctx context.Context, actor core.Actor, parent Parent) error {
	if s.parents == nil {
		return nil
	}
	return s.parents.CheckParentAccess(ctx, actor, parent)
}
