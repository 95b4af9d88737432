// AngelaMos | 2026
// handler.go

package entity

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/entities", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.Get("/{entityID}", h.Get)
		r.Put("/{entityID}", h.Update)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/entities", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/", h.List)
		r.Put("/{entityID}/suspension", h.SetSuspended)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.Created(w, ToEntityResponse(e))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	entities, total, err := h.service.ListMine(
		r.Context(),
		middleware.GetActor(r.Context()),
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.Paginated(w, ToEntityResponseList(entities), page.Page, page.PageSize, total)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		PageParams: core.PageFromRequest(r),
		UserID:     r.URL.Query().Get("user_id"),
		Search:     r.URL.Query().Get("search"),
	}

	entities, total, err := h.service.List(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.Paginated(
		w,
		ToEntityResponseList(entities),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "entityID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.OK(w, ToEntityResponse(e))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntityRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "entityID"),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.OK(w, ToEntityResponse(e))
}

func (h *Handler) SetSuspended(w http.ResponseWriter, r *http.Request) {
	var req SetSuspendedRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.SetSuspended(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "entityID"),
		*req.Suspended,
	)
	if err != nil {
		core.HandleServiceError(w, err, "entity")
		return
	}

	core.OK(w, ToEntityResponse(e))
}
