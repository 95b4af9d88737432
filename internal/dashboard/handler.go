// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"
	"strconv"

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
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/activity", h.Activity)
		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if actor.IsZero() {
		core.Unauthorized(w, "authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			core.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	limit = h.service.clampLimit(limit)
	items := h.service.BuildActivityFeed(r.Context(), actor.ID, limit)

	core.OK(w, ActivityResponse{Items: items, Limit: limit})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if actor.IsZero() {
		core.Unauthorized(w, "authentication required")
		return
	}

	core.OK(w, h.service.BuildStats(r.Context(), actor.ID))
}
