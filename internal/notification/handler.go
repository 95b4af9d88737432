// AngelaMos | 2026
// handler.go

package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/read-all", h.MarkAllRead)
		r.Post("/{notificationID}/read", h.MarkRead)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		PageParams: core.PageFromRequest(r),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}

	items, total, err := h.service.List(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "notification")
		return
	}

	core.Paginated(
		w,
		ToNotificationResponseList(items),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkRead(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "notificationID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "notification")
		return
	}

	core.NoContent(w)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.HandleServiceError(w, err, "notification")
		return
	}

	core.OK(w, MarkAllReadResponse{Updated: n})
}
