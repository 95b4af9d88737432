// AngelaMos | 2026
// dto.go

package document

import (
	"io"
	"time"
)

type UploadInput struct {
	Filename      string
	Size          int64
	Body          io.ReadSeeker
	DocumentType  string
	DraftCategory string
	Parent        *Parent
}

type LinkRequest struct {
	Category   string `json:"category"    validate:"required,oneof=intent_draft application_draft"`
	ParentKind string `json:"parent_kind" validate:"required,oneof=permit intent_registration"`
	ParentID   string `json:"parent_id"   validate:"required,uuid"`
}

// LinkFailure describes one draft that could not be linked. The draft and
// its blob are left as they were.
type LinkFailure struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Reason     string `json:"reason"`
}

type LinkResult struct {
	Linked   int           `json:"linked"`
	Failed   int           `json:"failed"`
	Failures []LinkFailure `json:"failures,omitempty"`
}

func (r LinkResult) Partial() bool {
	return r.Failed > 0
}

type DocumentResponse struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `json:"mime_type"`
	DocumentType  string    `json:"document_type"`
	State         State     `json:"state"`
	DraftCategory *string   `json:"draft_category,omitempty"`
	ParentKind    *string   `json:"parent_kind,omitempty"`
	ParentID      *string   `json:"parent_id,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

func ToDocumentResponse(d *Document) DocumentResponse {
	return DocumentResponse{
		ID:            d.ID,
		Filename:      d.Filename,
		FileSizeBytes: d.FileSizeBytes,
		MimeType:      d.MimeType,
		DocumentType:  d.DocumentType,
		State:         d.State,
		DraftCategory: d.DraftCategory,
		ParentKind:    d.ParentKind,
		ParentID:      d.ParentID,
		UploadedAt:    d.UploadedAt,
	}
}

func ToDocumentResponseList(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, ToDocumentResponse(&docs[i]))
	}
	return out
}
