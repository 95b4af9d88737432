// AngelaMos | 2026
// service.go

package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/permitdesk/internal/config"
	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/invoice"
	"github.com/carterperez-dev/permitdesk/internal/metrics"
	"github.com/carterperez-dev/permitdesk/internal/notification"
	"github.com/carterperez-dev/permitdesk/internal/permit"
)

const (
	TypeApplication  = "application"
	TypeInvoice      = "invoice"
	TypeNotification = "notification"
)

type ApplicationSource interface {
	RecentApplicationActivity(ctx context.Context, userID string, limit int) ([]permit.ApplicationActivity, error)
	ApplicationStatusCounts(ctx context.Context, userID string) (map[string]int, error)
	IntentStatusCounts(ctx context.Context, userID string) (map[string]int, error)
}

type InvoiceSource interface {
	Recent(ctx context.Context, userID string, limit int) ([]invoice.Invoice, error)
	Outstanding(ctx context.Context, userID string) (invoice.Outstanding, error)
}

type NotificationSource interface {
	Recent(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type Service struct {
	applications  ApplicationSource
	invoices      InvoiceSource
	notifications NotificationSource
	cfg           config.DashboardConfig
	logger        *slog.Logger
}

func NewService(
	applications ApplicationSource,
	invoices InvoiceSource,
	notifications NotificationSource,
	cfg config.DashboardConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		applications:  applications,
		invoices:      invoices,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
	}
}

type activitySource struct {
	name  string
	fetch func(ctx context.Context, userID string, n int) ([]ActivityItem, error)
}

// BuildActivityFeed merges the most recent applications, invoices and
// notifications of userID into one feed, newest first, truncated to limit.
// Sources are read one after another; a failing source is logged and left
// out.
func (s *Service) BuildActivityFeed(
	ctx context.Context,
	userID string,
	limit int,
) []ActivityItem {
	limit = s.clampLimit(limit)
	perSource := cmp.Or(s.cfg.PerSourceLimit, 5)

	sources := []activitySource{
		{name: TypeApplication, fetch: s.applicationItems},
		{name: TypeInvoice, fetch: s.invoiceItems},
		{name: TypeNotification, fetch: s.notificationItems},
	}

	feed := make([]ActivityItem, 0, len(sources)*perSource)
	for _, src := range sources {
		items, err := src.fetch(ctx, userID, perSource)
		if err != nil {
			s.sourceFailed(ctx, userID, src.name, err)
			continue
		}
		feed = append(feed, items...)
	}

	slices.SortStableFunc(feed, func(a, b ActivityItem) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if len(feed) > limit {
		feed = feed[:limit]
	}

	return feed
}

func (s *Service) applicationItems(
	ctx context.Context,
	userID string,
	n int,
) ([]ActivityItem, error) {
	if s.applications == nil {
		return nil, nil
	}

	apps, err := s.applications.RecentApplicationActivity(ctx, userID, n)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(apps))
	for _, a := range apps {
		p := applicationPresentation(a.Status)
		description := a.PermitType + " permit application"
		if a.LatestFeedback != nil && *a.LatestFeedback != "" {
			description = *a.LatestFeedback
		}
		items = append(items, ActivityItem{
			Type:        TypeApplication,
			ID:          a.ID,
			Title:       a.Title,
			Description: description,
			Status:      a.Status,
			Label:       p.Label,
			Tone:        p.Tone,
			Timestamp:   a.UpdatedAt,
		})
	}

	return items, nil
}

func (s *Service) invoiceItems(
	ctx context.Context,
	userID string,
	n int,
) ([]ActivityItem, error) {
	if s.invoices == nil {
		return nil, nil
	}

	invoices, err := s.invoices.Recent(ctx, userID, n)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(invoices))
	for _, inv := range invoices {
		p := invoicePresentation(inv.Status, inv.PaymentStatus)
		items = append(items, ActivityItem{
			Type:  TypeInvoice,
			ID:    inv.ID,
			Title: "Invoice " + inv.InvoiceNumber,
			Description: fmt.Sprintf("%s due %s",
				invoice.FormatAmount(inv.Amount, inv.Currency),
				inv.DueDate.Format(time.DateOnly)),
			Status:    inv.Status,
			Label:     p.Label,
			Tone:      p.Tone,
			Timestamp: inv.CreatedAt,
		})
	}

	return items, nil
}

func (s *Service) notificationItems(
	ctx context.Context,
	userID string,
	n int,
) ([]ActivityItem, error) {
	if s.notifications == nil {
		return nil, nil
	}

	notes, err := s.notifications.Recent(ctx, userID, n)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(notes))
	for _, note := range notes {
		p := notificationPresentation(note.Severity, note.IsRead)
		status := "unread"
		if note.IsRead {
			status = "read"
		}
		items = append(items, ActivityItem{
			Type:        TypeNotification,
			ID:          note.ID,
			Title:       note.Title,
			Description: note.Message,
			Status:      status,
			Label:       p.Label,
			Tone:        p.Tone,
			Timestamp:   note.CreatedAt,
		})
	}

	return items, nil
}

// BuildStats computes the dashboard KPIs for userID. An empty userID
// aggregates across all users. Failing sources leave their fields zero and
// are listed in Stats.Unavailable in the order they were read.
func (s *Service) BuildStats(ctx context.Context, userID string) Stats {
	var stats Stats

	fail := func(source string, err error) {
		s.sourceFailed(ctx, userID, source, err)
		stats.Unavailable = append(stats.Unavailable, source)
	}

	if s.applications != nil {
		if counts, err := s.applications.ApplicationStatusCounts(ctx, userID); err != nil {
			fail("application_counts", err)
		} else {
			stats.Applications = bucketApplications(counts)
		}

		if counts, err := s.applications.IntentStatusCounts(ctx, userID); err != nil {
			fail("intent_counts", err)
		} else {
			stats.PendingIntents = counts[permit.IntentPending] + counts[permit.IntentUnderReview]
		}
	}

	if s.invoices != nil {
		if out, err := s.invoices.Outstanding(ctx, userID); err != nil {
			fail(TypeInvoice, err)
		} else {
			stats.OutstandingInvoices = out.Count
			stats.OutstandingAmount = out.Total
		}
	}

	if s.notifications != nil && userID != "" {
		if n, err := s.notifications.CountUnread(ctx, userID); err != nil {
			fail(TypeNotification, err)
		} else {
			stats.UnreadNotifications = n
		}
	}

	return stats
}

func bucketApplications(counts map[string]int) ApplicationCounts {
	var b ApplicationCounts
	for status, n := range counts {
		b.Total += n
		switch status {
		case permit.AppApproved:
			b.Approved += n
		case permit.AppRejected:
			b.Rejected += n
		case permit.AppRequiresClarification, permit.AppDraft:
			b.NeedsAction += n
		default:
			b.Active += n
		}
	}
	return b
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return cmp.Or(s.cfg.DefaultLimit, 10)
	}
	if s.cfg.MaxLimit > 0 {
		return min(limit, s.cfg.MaxLimit)
	}
	return limit
}

func (s *Service) sourceFailed(ctx context.Context, userID, source string, err error) {
	metrics.ObserveFeedSourceFailure(source)
	core.AddSpanEvent(ctx, "dashboard.source_failed",
		attribute.String("source", source),
	)
	s.logger.WarnContext(ctx, "dashboard source failed",
		"source", source,
		"user_id", userID,
		"error", err,
	)
}
