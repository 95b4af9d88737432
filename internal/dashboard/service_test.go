// AngelaMos | 2026
// service_test.go

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/config"
	"github.com/carterperez-dev/permitdesk/internal/invoice"
	"github.com/carterperez-dev/permitdesk/internal/notification"
	"github.com/carterperez-dev/permitdesk/internal/permit"
)

var errSourceDown = errors.New("source down")

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

type fakeApplications struct {
	apps      []permit.ApplicationActivity
	appCounts map[string]int
	intents   map[string]int
	err       error
	lastLimit int
}

func (f *fakeApplications) RecentApplicationActivity(
	_ context.Context,
	_ string,
	limit int,
) ([]permit.ApplicationActivity, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.apps, nil
}

func (f *fakeApplications) ApplicationStatusCounts(
	context.Context,
	string,
) (map[string]int, error) {
	return f.appCounts, f.err
}

func (f *fakeApplications) IntentStatusCounts(
	context.Context,
	string,
) (map[string]int, error) {
	return f.intents, f.err
}

type fakeInvoices struct {
	invoices    []invoice.Invoice
	outstanding invoice.Outstanding
	err         error
}

func (f *fakeInvoices) Recent(context.Context, string, int) ([]invoice.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.invoices, nil
}

func (f *fakeInvoices) Outstanding(context.Context, string) (invoice.Outstanding, error) {
	return f.outstanding, f.err
}

type fakeNotifications struct {
	notes  []notification.Notification
	unread int
	err    error
}

func (f *fakeNotifications) Recent(
	context.Context,
	string,
	int,
) ([]notification.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.notes, nil
}

func (f *fakeNotifications) CountUnread(context.Context, string) (int, error) {
	return f.unread, f.err
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{PerSourceLimit: 5, DefaultLimit: 10, MaxLimit: 50}
}

func application(id, status string, updated time.Time) permit.ApplicationActivity {
	return permit.ApplicationActivity{Application: permit.Application{
		ID:         id,
		Title:      "Application " + id,
		PermitType: "environmental",
		Status:     status,
		UpdatedAt:  updated,
	}}
}

func fixtures() (*fakeApplications, *fakeInvoices, *fakeNotifications) {
	apps := &fakeApplications{apps: []permit.ApplicationActivity{
		application("app-1", permit.AppApproved, at(10)),
		application("app-2", permit.AppSubmitted, at(3)),
	}}

	invoices := &fakeInvoices{invoices: []invoice.Invoice{
		{
			ID:            "inv-1",
			InvoiceNumber: "INV-2026-0001",
			Amount:        125000,
			Currency:      "USD",
			Status:        invoice.StatusIssued,
			PaymentStatus: invoice.PaymentUnpaid,
			DueDate:       at(0),
			CreatedAt:     at(8),
		},
		{
			ID:            "inv-2",
			InvoiceNumber: "INV-2026-0002",
			Amount:        5000,
			Currency:      "USD",
			Status:        invoice.StatusIssued,
			PaymentStatus: invoice.PaymentPendingVerification,
			DueDate:       at(0),
			CreatedAt:     at(1),
		},
	}}

	notes := &fakeNotifications{notes: []notification.Notification{
		{ID: "n-1", Title: "Welcome", Severity: notification.SeverityInfo, CreatedAt: at(9)},
		{ID: "n-2", Title: "Approved", Severity: notification.SeveritySuccess, CreatedAt: at(5), IsRead: true},
		{ID: "n-3", Title: "Old", Severity: notification.SeverityWarning, CreatedAt: at(2)},
	}}

	return apps, invoices, notes
}

func ids(items []ActivityItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBuildActivityFeed_MergesNewestFirst(t *testing.T) {
	apps, invoices, notes := fixtures()
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	feed := svc.BuildActivityFeed(context.Background(), "user-1", 6)

	require.Len(t, feed, 6)
	assert.Equal(t,
		[]string{"app-1", "n-1", "inv-1", "n-2", "app-2", "n-3"},
		ids(feed),
	)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp))
	}
	assert.Equal(t, 5, apps.lastLimit)
}

func TestBuildActivityFeed_FailingSourceIsSkipped(t *testing.T) {
	apps, invoices, notes := fixtures()
	invoices.err = errSourceDown
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	feed := svc.BuildActivityFeed(context.Background(), "user-1", 6)

	require.Len(t, feed, 5)
	for _, item := range feed {
		assert.NotEqual(t, TypeInvoice, item.Type)
	}
}

func TestBuildActivityFeed_AllSourcesFail(t *testing.T) {
	apps, invoices, notes := fixtures()
	apps.err, invoices.err, notes.err = errSourceDown, errSourceDown, errSourceDown
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	feed := svc.BuildActivityFeed(context.Background(), "user-1", 10)

	assert.Empty(t, feed)
}

func TestBuildActivityFeed_Limits(t *testing.T) {
	apps, invoices, notes := fixtures()
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when zero", 0, 7},
		{"explicit", 3, 3},
		{"capped", 500, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := svc.BuildActivityFeed(context.Background(), "user-1", tt.limit)
			assert.Len(t, feed, tt.want)
		})
	}

	assert.Equal(t, 10, svc.clampLimit(0))
	assert.Equal(t, 50, svc.clampLimit(500))
}

func TestBuildActivityFeed_Presentation(t *testing.T) {
	apps, invoices, notes := fixtures()
	apps.apps[1].Status = "archived"
	feedback := "Please attach the site survey"
	apps.apps[0].LatestFeedback = &feedback
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	feed := svc.BuildActivityFeed(context.Background(), "user-1", 10)

	byID := make(map[string]ActivityItem, len(feed))
	for _, item := range feed {
		byID[item.ID] = item
	}

	assert.Equal(t, "Approved", byID["app-1"].Label)
	assert.Equal(t, ToneSuccess, byID["app-1"].Tone)
	assert.Equal(t, feedback, byID["app-1"].Description)

	assert.Equal(t, "Updated", byID["app-2"].Label)
	assert.Equal(t, ToneNeutral, byID["app-2"].Tone)

	assert.Equal(t, "Payment due", byID["inv-1"].Label)
	assert.Equal(t, "Payment under review", byID["inv-2"].Label)
	assert.Equal(t, "Invoice INV-2026-0001", byID["inv-1"].Title)

	assert.Equal(t, "New", byID["n-1"].Label)
	assert.Equal(t, "Read", byID["n-2"].Label)
	assert.Equal(t, ToneWarning, byID["n-3"].Tone)
}

func TestBuildStats(t *testing.T) {
	apps, invoices, notes := fixtures()
	apps.appCounts = map[string]int{
		permit.AppSubmitted:             2,
		permit.AppUnderTechnical:        1,
		permit.AppApproved:              3,
		permit.AppRejected:              1,
		permit.AppRequiresClarification: 2,
	}
	apps.intents = map[string]int{
		permit.IntentPending:     1,
		permit.IntentUnderReview: 2,
		permit.IntentApproved:    4,
	}
	invoices.outstanding = invoice.Outstanding{Count: 2, Total: 130000}
	notes.unread = 4
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	stats := svc.BuildStats(context.Background(), "user-1")

	assert.Equal(t, ApplicationCounts{
		Total:       9,
		Active:      3,
		Approved:    3,
		Rejected:    1,
		NeedsAction: 2,
	}, stats.Applications)
	assert.Equal(t, 3, stats.PendingIntents)
	assert.Equal(t, 2, stats.OutstandingInvoices)
	assert.Equal(t, int64(130000), stats.OutstandingAmount)
	assert.Equal(t, 4, stats.UnreadNotifications)
	assert.Empty(t, stats.Unavailable)
}

func TestBuildStats_FailingSource(t *testing.T) {
	apps, invoices, notes := fixtures()
	apps.appCounts = map[string]int{permit.AppApproved: 1}
	invoices.err = errSourceDown
	notes.unread = 1
	svc := NewService(apps, invoices, notes, testConfig(), nil)

	stats := svc.BuildStats(context.Background(), "user-1")

	assert.Equal(t, 1, stats.Applications.Approved)
	assert.Zero(t, stats.OutstandingInvoices)
	assert.Equal(t, 1, stats.UnreadNotifications)
	assert.Equal(t, []string{TypeInvoice}, stats.Unavailable)
}

// callLog records source reads without locking, so overlapping reads show
// up under the race detector and as a scrambled order.
type callLog struct {
	calls []string
}

type loggedApplications struct {
	*fakeApplications
	log *callLog
}

func (l loggedApplications) RecentApplicationActivity(
	ctx context.Context,
	userID string,
	limit int,
) ([]permit.ApplicationActivity, error) {
	l.log.calls = append(l.log.calls, "applications")
	return l.fakeApplications.RecentApplicationActivity(ctx, userID, limit)
}

func (l loggedApplications) ApplicationStatusCounts(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	l.log.calls = append(l.log.calls, "application_counts")
	return l.fakeApplications.ApplicationStatusCounts(ctx, userID)
}

func (l loggedApplications) IntentStatusCounts(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	l.log.calls = append(l.log.calls, "intent_counts")
	return l.fakeApplications.IntentStatusCounts(ctx, userID)
}

type loggedInvoices struct {
	*fakeInvoices
	log *callLog
}

func (l loggedInvoices) Recent(ctx context.Context, userID string, n int) ([]invoice.Invoice, error) {
	l.log.calls = append(l.log.calls, "invoices")
	return l.fakeInvoices.Recent(ctx, userID, n)
}

func (l loggedInvoices) Outstanding(ctx context.Context, userID string) (invoice.Outstanding, error) {
	l.log.calls = append(l.log.calls, "outstanding")
	return l.fakeInvoices.Outstanding(ctx, userID)
}

type loggedNotifications struct {
	*fakeNotifications
	log *callLog
}

func (l loggedNotifications) Recent(
	ctx context.Context,
	userID string,
	n int,
) ([]notification.Notification, error) {
	l.log.calls = append(l.log.calls, "notifications")
	return l.fakeNotifications.Recent(ctx, userID, n)
}

func (l loggedNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	l.log.calls = append(l.log.calls, "unread")
	return l.fakeNotifications.CountUnread(ctx, userID)
}

func TestSourcesAreReadInOrder(t *testing.T) {
	apps, invoices, notes := fixtures()
	log := &callLog{}
	svc := NewService(
		loggedApplications{apps, log},
		loggedInvoices{invoices, log},
		loggedNotifications{notes, log},
		testConfig(),
		nil,
	)

	t.Run("activity feed", func(t *testing.T) {
		log.calls = nil
		svc.BuildActivityFeed(context.Background(), "user-1", 10)
		assert.Equal(t, []string{"applications", "invoices", "notifications"}, log.calls)
	})

	t.Run("stats", func(t *testing.T) {
		log.calls = nil
		svc.BuildStats(context.Background(), "user-1")
		assert.Equal(t,
			[]string{"application_counts", "intent_counts", "outstanding", "unread"},
			log.calls,
		)
	})

	t.Run("failures keep read order", func(t *testing.T) {
		apps.err = errSourceDown
		invoices.err = errSourceDown
		t.Cleanup(func() {
			apps.err = nil
			invoices.err = nil
		})

		stats := svc.BuildStats(context.Background(), "user-1")
		assert.Equal(t,
			[]string{"application_counts", "intent_counts", TypeInvoice},
			stats.Unavailable,
		)
	})
}
