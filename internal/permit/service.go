// AngelaMos | 2026
// service.go

package permit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/document"
	"github.com/carterperez-dev/permitdesk/internal/metrics"
	"github.com/carterperez-dev/permitdesk/internal/notification"
)

var (
	ErrInvalidDateRange = core.NewAppError(
		core.ErrInvalidInput,
		"completion date must be after commencement date",
		http.StatusUnprocessableEntity,
		"INVALID_DATE_RANGE",
	)
	ErrInvalidTransition = core.NewAppError(
		core.ErrInvalidInput,
		"status change is not allowed from the current status",
		http.StatusConflict,
		"INVALID_TRANSITION",
	)
	ErrFeedbackRequired = core.NewAppError(
		core.ErrInvalidInput,
		"feedback is required for this decision",
		http.StatusUnprocessableEntity,
		"FEEDBACK_REQUIRED",
	)
)

// EntityChecker confirms an entity may be used for a new submission.
type EntityChecker interface {
	CheckUsable(ctx context.Context, actor core.Actor, entityID string) error
}

// DraftLinker attaches the actor's draft documents to a new parent record.
type DraftLinker interface {
	LinkDrafts(
		ctx context.Context,
		actor core.Actor,
		category string,
		parent document.Parent,
	) (document.LinkResult, error)
}

type Service struct {
	repo     Repository
	entities EntityChecker
	linker   DraftLinker
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	entities EntityChecker,
	linker DraftLinker,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		entities: entities,
		linker:   linker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitIntent validates and inserts a pending intent registration, then
// attaches the actor's intent drafts to it. Linking problems are reported
// in the result and never fail the submission.
func (s *Service) SubmitIntent(
	ctx context.Context,
	actor core.Actor,
	req SubmitIntentRequest,
) (*IntentRegistration, document.LinkResult, error) {
	core.TagSpan(ctx, actor, attribute.String("permitdesk.record.kind", "intent"))

	var links document.LinkResult

	commencement, completion, err := parseDateRange(
		req.CommencementDate,
		req.CompletionDate,
	)
	if err != nil {
		return nil, links, err
	}

	if err := s.entities.CheckUsable(ctx, actor, req.EntityID); err != nil {
		return nil, links, err
	}

	intent := &IntentRegistration{
		ID:                         core.NewID(),
		UserID:                     actor.ID,
		EntityID:                   req.EntityID,
		ActivityLevel:              req.ActivityLevel,
		ActivityDescription:        strings.TrimSpace(req.ActivityDescription),
		PreparatoryWorkDescription: strings.TrimSpace(req.PreparatoryWorkDescription),
		LocationDescription:        strings.TrimSpace(req.LocationDescription),
		CommencementDate:           commencement,
		CompletionDate:             completion,
		Status:                     IntentPending,
	}

	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return nil, links, err
	}

	s.logger.InfoContext(ctx, "intent submitted",
		"intent_id", intent.ID,
		"user_id", actor.ID,
	)

	links = s.linkDrafts(ctx, actor, document.CategoryIntentDraft, document.Parent{
		Kind: document.ParentIntent,
		ID:   intent.ID,
	})

	s.notify(ctx, actor.ID,
		"Intent registration received",
		"Your intent registration has been submitted and is pending review.",
		notification.SeverityInfo,
	)

	return intent, links, nil
}

// SubmitApplication validates and inserts a submitted permit application,
// then attaches the actor's application drafts to it.
func (s *Service) SubmitApplication(
	ctx context.Context,
	actor core.Actor,
	req SubmitApplicationRequest,
) (*Application, document.LinkResult, error) {
	core.TagSpan(ctx, actor, attribute.String("permitdesk.record.kind", "application"))

	var links document.LinkResult

	commencement, completion, err := parseDateRange(
		req.CommencementDate,
		req.CompletionDate,
	)
	if err != nil {
		return nil, links, err
	}

	if err := s.entities.CheckUsable(ctx, actor, req.EntityID); err != nil {
		return nil, links, err
	}

	app := &Application{
		ID:               core.NewID(),
		UserID:           actor.ID,
		EntityID:         req.EntityID,
		Title:            strings.TrimSpace(req.Title),
		PermitType:       strings.TrimSpace(req.PermitType),
		Description:      strings.TrimSpace(req.Description),
		CommencementDate: commencement,
		CompletionDate:   completion,
		Status:           AppSubmitted,
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, links, err
	}

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"user_id", actor.ID,
	)

	links = s.linkDrafts(ctx, actor, document.CategoryApplicationDraft, document.Parent{
		Kind: document.ParentPermit,
		ID:   app.ID,
	})

	s.notify(ctx, actor.ID,
		"Application submitted",
		fmt.Sprintf("Your application %q has been submitted.", app.Title),
		notification.SeverityInfo,
	)

	return app, links, nil
}

func (s *Service) linkDrafts(
	ctx context.Context,
	actor core.Actor,
	category string,
	parent document.Parent,
) document.LinkResult {
	if s.linker == nil {
		return document.LinkResult{}
	}

	result, err := s.linker.LinkDrafts(ctx, actor, category, parent)
	if err != nil {
		s.logger.WarnContext(ctx, "draft documents not linked",
			"parent", parent.String(),
			"error", err,
		)
		core.SetSpanError(ctx, err)
	}

	return result
}

// TransitionIntent moves an intent along its review path. Staff only.
func (s *Service) TransitionIntent(
	ctx context.Context,
	actor core.Actor,
	id, to, notes string,
) (*IntentRegistration, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("transition intent: %w", core.ErrForbidden)
	}

	current, err := s.repo.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransitionIntent(current.Status, to) {
		return nil, ErrInvalidTransition
	}

	notes = strings.TrimSpace(notes)
	if to == IntentRejected && notes == "" {
		return nil, ErrFeedbackRequired
	}

	updated, err := s.repo.TransitionIntent(ctx, IntentTransition{
		ID:         id,
		From:       current.Status,
		To:         to,
		ReviewerID: actor.ID,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, "intent", id, actor, current.Status, to)

	title, severity := decisionMessage("Intent registration", to)
	s.notify(ctx, updated.UserID, title,
		fmt.Sprintf("Your intent registration is now %s.", humanize(to)),
		severity,
	)

	return updated, nil
}

// TransitionApplication moves an application along its assessment path
// and records the step as an assessment. Staff only; applicants use
// Resubmit.
func (s *Service) TransitionApplication(
	ctx context.Context,
	actor core.Actor,
	id, to, feedback string,
) (*Application, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("transition application: %w", core.ErrForbidden)
	}

	if to == AppSubmitted {
		return nil, ErrInvalidTransition
	}

	current, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransitionApplication(current.Status, to) {
		return nil, ErrInvalidTransition
	}

	feedback = strings.TrimSpace(feedback)
	if (to == AppRejected || to == AppRequiresClarification) && feedback == "" {
		return nil, ErrFeedbackRequired
	}

	t := ApplicationTransition{
		ID:   id,
		From: current.Status,
		To:   to,
		Assessment: &Assessment{
			ID:            core.NewID(),
			ApplicationID: id,
			AssessorID:    actor.ID,
			FromStatus:    current.Status,
			ToStatus:      to,
			Feedback:      feedback,
		},
	}

	if to == AppApproved {
		number := s.newPermitNumber()
		t.PermitNumber = &number
	}

	updated, err := s.repo.TransitionApplication(ctx, t)
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, "application", id, actor, current.Status, to)

	message := fmt.Sprintf("Your application %q is now %s.", updated.Title, humanize(to))
	if updated.PermitNumber != nil && to == AppApproved {
		message = fmt.Sprintf("Your application %q was approved. Permit number %s.",
			updated.Title, *updated.PermitNumber)
	}
	title, severity := decisionMessage("Application", to)
	s.notify(ctx, updated.UserID, title, message, severity)

	return updated, nil
}

// Resubmit returns an application to the review queue. Only its owner may
// do this, from draft or requires_clarification.
func (s *Service) Resubmit(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Application, error) {
	current, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.UserID != actor.ID {
		return nil, fmt.Errorf("resubmit application: %w", core.ErrNotFound)
	}

	if !CanTransitionApplication(current.Status, AppSubmitted) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.TransitionApplication(ctx, ApplicationTransition{
		ID:   id,
		From: current.Status,
		To:   AppSubmitted,
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, "application", id, actor, current.Status, AppSubmitted)
	return updated, nil
}

func (s *Service) GetIntent(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*IntentRegistration, error) {
	intent, err := s.repo.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(intent.UserID) {
		return nil, fmt.Errorf("get intent: %w", core.ErrNotFound)
	}

	return intent, nil
}

func (s *Service) GetApplication(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*Application, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(app.UserID) {
		return nil, fmt.Errorf("get application: %w", core.ErrNotFound)
	}

	return app, nil
}

func (s *Service) ListAssessments(
	ctx context.Context,
	actor core.Actor,
	applicationID string,
) ([]Assessment, error) {
	if _, err := s.GetApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return s.repo.ListAssessments(ctx, applicationID)
}

func (s *Service) ListMyIntents(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]IntentRegistration, int, error) {
	params.UserID = actor.ID
	return s.repo.ListIntents(ctx, params)
}

func (s *Service) ListMyApplications(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Application, int, error) {
	params.UserID = actor.ID
	return s.repo.ListApplications(ctx, params)
}

func (s *Service) ListIntentsForReview(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]IntentRegistration, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list intents for review: %w", core.ErrForbidden)
	}
	return s.repo.ListIntents(ctx, params)
}

func (s *Service) ListApplicationsForReview(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Application, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list applications for review: %w", core.ErrForbidden)
	}
	return s.repo.ListApplications(ctx, params)
}

func (s *Service) RecentApplicationActivity(
	ctx context.Context,
	userID string,
	limit int,
) ([]ApplicationActivity, error) {
	return s.repo.RecentApplicationActivity(ctx, userID, limit)
}

func (s *Service) ApplicationStatusCounts(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	return s.repo.CountApplicationsByStatus(ctx, userID)
}

func (s *Service) IntentStatusCounts(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	return s.repo.CountIntentsByStatus(ctx, userID)
}

// newPermitNumber returns EP-<year>-<last 10 chars of a ULID>. The
// permit_number column is unique.
func (s *Service) newPermitNumber() string {
	id := core.NewSortableID()
	return fmt.Sprintf("EP-%d-%s", s.now().UTC().Year(), id[len(id)-10:])
}

func (s *Service) recordTransition(
	ctx context.Context,
	kind, id string,
	actor core.Actor,
	from, to string,
) {
	metrics.ObserveTransition(kind, to)
	core.TagSpan(ctx, actor,
		attribute.String("permitdesk.record.kind", kind),
		attribute.String("permitdesk.record.id", id),
	)
	core.AddSpanEvent(ctx, kind+".transition",
		attribute.String("id", id),
		attribute.String("from", from),
		attribute.String("to", to),
	)
	s.logger.InfoContext(ctx, kind+" status changed",
		"id", id,
		"actor_id", actor.ID,
		"from", from,
		"to", to,
	)
}

func (s *Service) notify(ctx context.Context, userID, title, message, severity string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, title, message, severity)
}

func parseDateRange(commencementRaw, completionRaw string) (time.Time, time.Time, error) {
	commencement, err := time.Parse(dateLayout, commencementRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf(
			"commencement date: %w",
			core.ErrInvalidInput,
		)
	}

	completion, err := time.Parse(dateLayout, completionRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf(
			"completion date: %w",
			core.ErrInvalidInput,
		)
	}

	if !completion.After(commencement) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	return commencement, completion, nil
}

func decisionMessage(subject, status string) (string, string) {
	switch status {
	case AppApproved:
		return subject + " approved", notification.SeveritySuccess
	case AppRejected:
		return subject + " rejected", notification.SeverityError
	case AppRequiresClarification:
		return subject + " needs clarification", notification.SeverityWarning
	default:
		return subject + " updated", notification.SeverityInfo
	}
}

func humanize(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
