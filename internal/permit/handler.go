// AngelaMos | 2026
// handler.go

package permit

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
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/intents", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.SubmitIntent)
		r.Get("/", h.ListMyIntents)
		r.Get("/{intentID}", h.GetIntent)
		r.With(staffOnly).Post("/{intentID}/transition", h.TransitionIntent)
	})

	r.Route("/applications", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.SubmitApplication)
		r.Get("/", h.ListMyApplications)
		r.Get("/{applicationID}", h.GetApplication)
		r.Get("/{applicationID}/assessments", h.ListAssessments)
		r.Post("/{applicationID}/resubmit", h.Resubmit)
		r.With(staffOnly).Post("/{applicationID}/transition", h.TransitionApplication)
	})

	r.Route("/review", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/intents", h.ListIntentsForReview)
		r.Get("/applications", h.ListApplicationsForReview)
	})
}

func (h *Handler) SubmitIntent(w http.ResponseWriter, r *http.Request) {
	var req SubmitIntentRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	intent, links, err := h.service.SubmitIntent(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "intent")
		return
	}

	core.Created(w, SubmissionResponse[IntentResponse]{
		Record:    ToIntentResponse(intent),
		Documents: links,
	})
}

func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req SubmitApplicationRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	app, links, err := h.service.SubmitApplication(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.Created(w, SubmissionResponse[ApplicationResponse]{
		Record:    ToApplicationResponse(app),
		Documents: links,
	})
}

func (h *Handler) GetIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.service.GetIntent(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "intentID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "intent")
		return
	}

	core.OK(w, ToIntentResponse(intent))
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.GetApplication(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "applicationID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.OK(w, ToApplicationResponse(app))
}

func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAssessments(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "applicationID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.OK(w, ToAssessmentResponseList(items))
}

func (h *Handler) TransitionIntent(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !h.decodeTransition(w, r, &req) {
		return
	}

	intent, err := h.service.TransitionIntent(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "intentID"),
		req.Status,
		req.Feedback,
	)
	if err != nil {
		core.HandleServiceError(w, err, "intent")
		return
	}

	core.OK(w, ToIntentResponse(intent))
}

func (h *Handler) TransitionApplication(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !h.decodeTransition(w, r, &req) {
		return
	}

	app, err := h.service.TransitionApplication(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "applicationID"),
		req.Status,
		req.Feedback,
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.OK(w, ToApplicationResponse(app))
}

func (h *Handler) Resubmit(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Resubmit(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "applicationID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.OK(w, ToApplicationResponse(app))
}

func (h *Handler) ListMyIntents(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	items, total, err := h.service.ListMyIntents(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "intent")
		return
	}

	core.Paginated(w, ToIntentResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	items, total, err := h.service.ListMyApplications(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.Paginated(w, ToApplicationResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) ListIntentsForReview(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	items, total, err := h.service.ListIntentsForReview(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "intent")
		return
	}

	core.Paginated(w, ToIntentResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) ListApplicationsForReview(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	items, total, err := h.service.ListApplicationsForReview(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "application")
		return
	}

	core.Paginated(w, ToApplicationResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) decodeTransition(
	w http.ResponseWriter,
	r *http.Request,
	req *TransitionRequest,
) bool {
	if err := core.DecodeJSON(r, req); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func listParams(r *http.Request) ListParams {
	return ListParams{
		PageParams: core.PageFromRequest(r),
		Status:     r.URL.Query().Get("status"),
	}
}
