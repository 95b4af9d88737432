// AngelaMos | 2026
// entity.go

package document

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	StateDraft  State = "draft"
	StateLinked State = "linked"
)

type ParentKind string

const (
	ParentPermit ParentKind = "permit"
	ParentIntent ParentKind = "intent_registration"
)

const (
	CategoryIntentDraft      = "intent_draft"
	CategoryApplicationDraft = "application_draft"
)

// categoryParents maps each draft category onto the only parent kind its
// drafts may be linked to.
var categoryParents = map[string]ParentKind{
	CategoryIntentDraft:      ParentIntent,
	CategoryApplicationDraft: ParentPermit,
}

func ValidCategory(category string) bool {
	_, ok := categoryParents[category]
	return ok
}

func ParentKindFor(category string) (ParentKind, bool) {
	kind, ok := categoryParents[category]
	return kind, ok
}

type Parent struct {
	Kind ParentKind
	ID   string
}

func (p Parent) Valid() bool {
	return (p.Kind == ParentPermit || p.Kind == ParentIntent) && p.ID != ""
}

func (p Parent) String() string {
	return string(p.Kind) + ":" + p.ID
}

// Document is either a Draft (category set, no parent) or Linked (parent
// set, no category). Both point at a blob by StorageKey.
type Document struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Filename      string    `db:"filename"`
	StorageKey    string    `db:"storage_key"`
	FileSizeBytes int64     `db:"file_size_bytes"`
	MimeType      string    `db:"mime_type"`
	DocumentType  string    `db:"document_type"`
	State         State     `db:"state"`
	DraftCategory *string   `db:"draft_category"`
	ParentKind    *string   `db:"parent_kind"`
	ParentID      *string   `db:"parent_id"`
	UploadedAt    time.Time `db:"uploaded_at"`
}

var errInvalidState = errors.New("invalid document state")

func (d *Document) Parent() (Parent, bool) {
	if d.ParentKind == nil || d.ParentID == nil {
		return Parent{}, false
	}
	return Parent{Kind: ParentKind(*d.ParentKind), ID: *d.ParentID}, true
}

func (d *Document) Category() string {
	if d.DraftCategory == nil {
		return ""
	}
	return *d.DraftCategory
}

func (d *Document) IsDraft() bool {
	return d.State == StateDraft
}

// Validate checks the draft/linked shape. The same rule is enforced by a
// CHECK constraint on the documents table.
func (d *Document) Validate() error {
	if d.StorageKey == "" || d.UserID == "" || d.Filename == "" {
		return fmt.Errorf("%w: storage key, owner and filename are required", errInvalidState)
	}

	parent, hasParent := d.Parent()

	switch d.State {
	case StateDraft:
		if hasParent || d.ParentKind != nil || d.ParentID != nil {
			return fmt.Errorf("%w: draft has a parent", errInvalidState)
		}
		if !ValidCategory(d.Category()) {
			return fmt.Errorf("%w: draft category %q", errInvalidState, d.Category())
		}
	case StateLinked:
		if !hasParent || !parent.Valid() {
			return fmt.Errorf("%w: linked document without parent", errInvalidState)
		}
		if d.DraftCategory != nil {
			return fmt.Errorf("%w: linked document keeps a draft category", errInvalidState)
		}
	default:
		return fmt.Errorf("%w: unknown state %q", errInvalidState, d.State)
	}

	return nil
}

// LinkedCopy returns a new linked record for the same blob. The draft is
// left untouched.
func (d *Document) LinkedCopy(id string, parent Parent) *Document {
	kind := string(parent.Kind)
	parentID := parent.ID

	return &Document{
		ID:            id,
		UserID:        d.UserID,
		Filename:      d.Filename,
		StorageKey:    d.StorageKey,
		FileSizeBytes: d.FileSizeBytes,
		MimeType:      d.MimeType,
		DocumentType:  d.DocumentType,
		State:         StateLinked,
		ParentKind:    &kind,
		ParentID:      &parentID,
	}
}
