// AngelaMos | 2026
// handler.go

package invoice

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
	r.Route("/invoices", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListMine)
		r.Get("/{invoiceID}", h.Get)
		r.Post("/{invoiceID}/payment", h.SubmitPayment)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/invoices", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Post("/{invoiceID}/verify", h.VerifyPayment)
		r.Put("/{invoiceID}/follow-up", h.SetFollowUp)
		r.Post("/{invoiceID}/overdue", h.MarkOverdue)
		r.Post("/{invoiceID}/cancel", h.Cancel)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.Created(w, ToInvoiceResponse(inv))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)

	items, total, err := h.service.ListMine(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.Paginated(w, ToInvoiceResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	params.UserID = r.URL.Query().Get("user_id")

	items, total, err := h.service.List(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.Paginated(w, ToInvoiceResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.SubmitPayment(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
		req.PaymentReference,
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.VerifyPayment(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) SetFollowUp(w http.ResponseWriter, r *http.Request) {
	var req FollowUpRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.Unprocessable(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.SetFollowUp(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.MarkOverdue(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Cancel(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "invoiceID"),
	)
	if err != nil {
		core.HandleServiceError(w, err, "invoice")
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func listParams(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		PageParams:    core.PageFromRequest(r),
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
	}
}
