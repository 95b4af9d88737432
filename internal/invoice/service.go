// AngelaMos | 2026
// service.go

package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/notification"
)

var (
	ErrMissingReference = core.NewAppError(
		core.ErrInvalidInput,
		"an invoice must reference a permit, inspection or intent registration",
		http.StatusUnprocessableEntity,
		"MISSING_BILLABLE_REFERENCE",
	)
	ErrInvoiceState = core.NewAppError(
		core.ErrConflict,
		"the invoice is not in a state that allows this action",
		http.StatusConflict,
		"INVALID_INVOICE_STATE",
	)
	ErrNotYetDue = core.NewAppError(
		core.ErrConflict,
		"the invoice is not past its due date",
		http.StatusConflict,
		"NOT_YET_DUE",
	)
)

type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create issues an invoice for a billable event. Staff only.
func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreateInvoiceRequest,
) (*Invoice, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("create invoice: %w", core.ErrForbidden)
	}

	if req.PermitID == nil && req.InspectionID == nil && req.IntentRegistrationID == nil {
		return nil, ErrMissingReference
	}

	due, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("create invoice: due date: %w", core.ErrInvalidInput)
	}

	inv := &Invoice{
		ID:                   core.NewID(),
		InvoiceNumber:        s.newInvoiceNumber(),
		UserID:               req.UserID,
		Description:          strings.TrimSpace(req.Description),
		Amount:               req.Amount,
		Currency:             strings.ToUpper(req.Currency),
		Status:               StatusIssued,
		PaymentStatus:        PaymentUnpaid,
		DueDate:              due,
		PermitID:             req.PermitID,
		InspectionID:         req.InspectionID,
		IntentRegistrationID: req.IntentRegistrationID,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invoice issued",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"user_id", inv.UserID,
		"actor_id", actor.ID,
	)

	s.notify(ctx, inv.UserID, "New invoice",
		fmt.Sprintf("Invoice %s for %s is due on %s.",
			inv.InvoiceNumber, FormatAmount(inv.Amount, inv.Currency),
			inv.DueDate.Format(dateLayout)),
		notification.SeverityInfo,
	)

	return inv, nil
}

func (s *Service) Get(ctx context.Context, actor core.Actor, id string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(inv.UserID) {
		return nil, fmt.Errorf("get invoice: %w", core.ErrNotFound)
	}

	return inv, nil
}

func (s *Service) ListMine(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Invoice, int, error) {
	params.UserID = actor.ID
	return s.repo.List(ctx, params)
}

func (s *Service) List(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Invoice, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list invoices: %w", core.ErrForbidden)
	}
	return s.repo.List(ctx, params)
}

// SubmitPayment records the owner's payment reference and queues the
// invoice for staff verification.
func (s *Service) SubmitPayment(
	ctx context.Context,
	actor core.Actor,
	id, reference string,
) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.UserID != actor.ID {
		return nil, fmt.Errorf("submit payment: %w", core.ErrNotFound)
	}

	if !inv.IsOpen() || inv.PaymentStatus != PaymentUnpaid {
		return nil, ErrInvoiceState
	}

	updated, err := s.repo.SubmitPayment(ctx, id, strings.TrimSpace(reference))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment submitted",
		"invoice_id", id,
		"user_id", actor.ID,
	)
	return updated, nil
}

func (s *Service) VerifyPayment(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Invoice, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("verify payment: %w", core.ErrForbidden)
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.IsOpen() || inv.PaymentStatus != PaymentPendingVerification {
		return nil, ErrInvoiceState
	}

	updated, err := s.repo.VerifyPayment(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment verified",
		"invoice_id", id,
		"actor_id", actor.ID,
	)
	s.notify(ctx, updated.UserID, "Payment confirmed",
		fmt.Sprintf("Payment for invoice %s has been verified.", updated.InvoiceNumber),
		notification.SeveritySuccess,
	)
	return updated, nil
}

func (s *Service) SetFollowUp(
	ctx context.Context,
	actor core.Actor,
	id string,
	req FollowUpRequest,
) (*Invoice, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("set follow up: %w", core.ErrForbidden)
	}

	date, err := time.Parse(dateLayout, req.FollowUpDate)
	if err != nil {
		return nil, fmt.Errorf("set follow up: date: %w", core.ErrInvalidInput)
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.IsOpen() {
		return nil, ErrInvoiceState
	}

	return s.repo.SetFollowUp(ctx, id, date, strings.TrimSpace(req.Notes))
}

// MarkOverdue flags an issued, unpaid invoice whose due date has passed.
func (s *Service) MarkOverdue(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Invoice, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("mark overdue: %w", core.ErrForbidden)
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.Status != StatusIssued || inv.PaymentStatus == PaymentPaid {
		return nil, ErrInvoiceState
	}

	now := s.now()
	if !inv.DueDate.Before(now) {
		return nil, ErrNotYetDue
	}

	updated, err := s.repo.MarkOverdue(ctx, id, now)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated.UserID, "Invoice overdue",
		fmt.Sprintf("Invoice %s is overdue.", updated.InvoiceNumber),
		notification.SeverityWarning,
	)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, actor core.Actor, id string) (*Invoice, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("cancel invoice: %w", core.ErrForbidden)
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.IsOpen() || inv.PaymentStatus != PaymentUnpaid {
		return nil, ErrInvoiceState
	}

	updated, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invoice cancelled",
		"invoice_id", id,
		"actor_id", actor.ID,
	)
	return updated, nil
}

func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Invoice, error) {
	return s.repo.Recent(ctx, userID, limit)
}

func (s *Service) Outstanding(ctx context.Context, userID string) (Outstanding, error) {
	return s.repo.Outstanding(ctx, userID)
}

func (s *Service) newInvoiceNumber() string {
	id := core.NewSortableID()
	return fmt.Sprintf("INV-%d-%s", s.now().UTC().Year(), id[len(id)-8:])
}

func (s *Service) notify(ctx context.Context, userID, title, message, severity string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, title, message, severity)
}

// FormatAmount renders minor units as "<CUR> <major>.<minor>".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, amount/100, amount%100)
}
