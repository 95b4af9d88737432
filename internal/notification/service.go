// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

const notifyTimeout = 5 * time.Second

// Notifier delivers a message to a user. Delivery is best effort: callers
// never see a failure.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, severity string)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Notify persists a notification for userID. The write outlives a
// cancelled request context and any failure is only logged.
func (s *Service) Notify(ctx context.Context, userID, title, message, severity string) {
	if !ValidSeverity(severity) {
		severity = SeverityInfo
	}

	n := &Notification{
		ID:       core.NewID(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		Severity: severity,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.repo.Create(writeCtx, n); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"user_id", userID,
			"title", title,
			"error", err,
		)
		return
	}

	s.logger.DebugContext(ctx, "notification sent",
		"notification_id", n.ID,
		"user_id", userID,
		"severity", severity,
	)
}

func (s *Service) List(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Notification, int, error) {
	return s.repo.ListByUser(ctx, actor.ID, params)
}

func (s *Service) Recent(
	ctx context.Context,
	userID string,
	limit int,
) ([]Notification, error) {
	return s.repo.Recent(ctx, userID, limit)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, actor core.Actor, id string) error {
	return s.repo.MarkRead(ctx, actor.ID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, actor core.Actor) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

var _ Notifier = (*Service)(nil)
