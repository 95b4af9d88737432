// AngelaMos | 2026
// handler.go

package profile

import (
	"net/http"
	"strconv"

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/suspension", h.SetSuspension)
		r.Post("/{userID}/reset-password", h.ResetPassword)
		r.Put("/{userID}/type", h.ChangeUserType)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetMe(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.UpdateMe(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		PageParams: core.PageFromRequest(r),
		Search:     q.Get("search"),
		UserType:   q.Get("user_type"),
	}

	if raw := q.Get("suspended"); raw != "" {
		suspended, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "suspended must be true or false")
			return
		}
		params.Suspended = &suspended
	}

	profiles, total, err := h.service.ListUsers(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.Paginated(
		w,
		ToProfileResponseList(profiles),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetUser(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) SetSuspension(w http.ResponseWriter, r *http.Request) {
	var req SetSuspensionRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.SetSuspension(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "userID"),
		*req.Suspended,
		req.Reason,
	)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	temp, err := h.service.ResetPassword(
		r.Context(),
		middleware.GetActor(r.Context()),
		targetID,
	)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	core.OK(w, ResetPasswordResponse{
		UserID:            targetID,
		TemporaryPassword: temp,
	})
}

func (h *Handler) ChangeUserType(w http.ResponseWriter, r *http.Request) {
	var req ChangeUserTypeRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.ChangeUserType(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "userID"),
		req.UserType,
	)
	if err != nil {
		core.HandleServiceError(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(p))
}
