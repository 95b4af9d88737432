// AngelaMos | 2026
// handler.go

package document

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
)

const multipartMemory = 8 << 20

type Handler struct {
	service   *Service
	validator *validator.Validate
	maxBytes  int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		maxBytes:  maxUploadBytes,
	}
}

// RegisterRoutes mounts the document endpoints. uploadLimiter wraps only
// the upload route.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, uploadLimiter func(http.Handler) http.Handler,
) {
	r.Route("/documents", func(r chi.Router) {
		r.Use(authenticator)

		r.With(uploadLimiter).Post("/", h.Upload)
		r.Get("/", h.ListForParent)
		r.Get("/drafts", h.ListDrafts)
		r.Post("/link", h.Link)
		r.Get("/{documentID}", h.Get)
		r.Get("/{documentID}/download", h.Download)
		r.Delete("/{documentID}", h.Delete)
	})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, ErrFileTooLarge)
			return
		}
		core.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	in := UploadInput{
		Filename:      header.Filename,
		Size:          header.Size,
		Body:          file,
		DocumentType:  r.FormValue("document_type"),
		DraftCategory: r.FormValue("draft_category"),
	}

	if parentID := r.FormValue("parent_id"); parentID != "" {
		in.Parent = &Parent{
			Kind: ParentKind(r.FormValue("parent_kind")),
			ID:   parentID,
		}
	}

	doc, err := h.service.Upload(r.Context(), middleware.GetActor(r.Context()), in)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.Created(w, ToDocumentResponse(doc))
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDrafts(
		r.Context(),
		middleware.GetActor(r.Context()),
		r.URL.Query().Get("category"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.OK(w, ToDocumentResponseList(docs))
}

func (h *Handler) ListForParent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parent := Parent{
		Kind: ParentKind(q.Get("parent_kind")),
		ID:   q.Get("parent_id"),
	}

	docs, err := h.service.ListForParent(
		r.Context(),
		middleware.GetActor(r.Context()),
		parent,
	)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.OK(w, ToDocumentResponseList(docs))
}

func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	parent := Parent{Kind: ParentKind(req.ParentKind), ID: req.ParentID}

	result, err := h.service.LinkDrafts(r.Context(), actor, req.Category, parent)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.OK(w, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "documentID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.OK(w, ToDocumentResponse(doc))
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	doc, obj, err := h.service.Download(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "documentID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}
	defer obj.Body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(
		"attachment",
		map[string]string{"filename": doc.Filename},
	))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	//nolint:errcheck // client disconnects are not actionable
	_, _ = io.Copy(w, obj.Body)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "documentID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "document")
		return
	}

	core.NoContent(w)
}
