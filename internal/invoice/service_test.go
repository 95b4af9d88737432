// AngelaMos | 2026
// service_test.go

package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type memRepo struct {
	invoices map[string]*Invoice
}

func newMemRepo() *memRepo {
	return &memRepo{invoices: make(map[string]*Invoice)}
}

func (m *memRepo) Create(_ context.Context, inv *Invoice) error {
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	c := *inv
	m.invoices[inv.ID] = &c
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]Invoice, int, error) {
	out := []Invoice{}
	for _, inv := range m.invoices {
		if params.UserID == "" || inv.UserID == params.UserID {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Recent(context.Context, string, int) ([]Invoice, error) {
	return nil, nil
}

func (m *memRepo) Outstanding(_ context.Context, userID string) (Outstanding, error) {
	var out Outstanding
	for _, inv := range m.invoices {
		if inv.UserID == userID && inv.IsOpen() && inv.PaymentStatus != PaymentPaid {
			out.Count++
			out.Total += inv.Amount
		}
	}
	return out, nil
}

func (m *memRepo) update(id string, fn func(inv *Invoice)) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, core.ErrConflict
	}
	fn(inv)
	c := *inv
	return &c, nil
}

func (m *memRepo) SubmitPayment(_ context.Context, id, reference string) (*Invoice, error) {
	return m.update(id, func(inv *Invoice) {
		inv.PaymentStatus = PaymentPendingVerification
		inv.PaymentReference = &reference
	})
}

func (m *memRepo) VerifyPayment(_ context.Context, id, verifiedBy string) (*Invoice, error) {
	return m.update(id, func(inv *Invoice) {
		now := time.Now()
		inv.PaymentStatus = PaymentPaid
		inv.Status = StatusPaid
		inv.VerifiedBy = &verifiedBy
		inv.VerifiedAt = &now
	})
}

func (m *memRepo) SetFollowUp(
	_ context.Context,
	id string,
	date time.Time,
	notes string,
) (*Invoice, error) {
	return m.update(id, func(inv *Invoice) {
		inv.FollowUpDate = &date
		inv.FollowUpNotes = &notes
	})
}

func (m *memRepo) MarkOverdue(_ context.Context, id string, _ time.Time) (*Invoice, error) {
	return m.update(id, func(inv *Invoice) { inv.Status = StatusOverdue })
}

func (m *memRepo) Cancel(_ context.Context, id string) (*Invoice, error) {
	return m.update(id, func(inv *Invoice) { inv.Status = StatusCancelled })
}

var (
	payer   = core.Actor{ID: "9d9b3bb1-52d3-4d4c-9a43-0d1a8c1c5e21", UserType: core.UserTypePublic}
	cashier = core.Actor{ID: "staff-1", UserType: core.UserTypeStaff}
	permit  = "4a3a4c36-7d7e-4a0c-9c1c-2d9f8ddc0a77"
)

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func issue(t *testing.T, svc *Service, due string) *Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), cashier, CreateInvoiceRequest{
		UserID:      payer.ID,
		Description: "Application fee",
		Amount:      125050,
		Currency:    "usd",
		DueDate:     due,
		PermitID:    &permit,
	})
	require.NoError(t, err)
	return inv
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()

	inv := issue(t, svc, "2026-07-01")
	assert.Equal(t, StatusIssued, inv.Status)
	assert.Equal(t, PaymentUnpaid, inv.PaymentStatus)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-2026-"))

	_, err := svc.Create(context.Background(), payer, CreateInvoiceRequest{})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Create(context.Background(), cashier, CreateInvoiceRequest{
		UserID: payer.ID, Description: "Fee", Amount: 100, Currency: "USD",
		DueDate: "2026-07-01",
	})
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestPaymentLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	inv := issue(t, svc, "2026-07-01")

	_, err := svc.VerifyPayment(ctx, cashier, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceState)

	other := core.Actor{ID: "user-x", UserType: core.UserTypePublic}
	_, err = svc.SubmitPayment(ctx, other, inv.ID, "TX-1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	submitted, err := svc.SubmitPayment(ctx, payer, inv.ID, " TX-1 ")
	require.NoError(t, err)
	assert.Equal(t, PaymentPendingVerification, submitted.PaymentStatus)
	assert.Equal(t, "TX-1", *submitted.PaymentReference)

	_, err = svc.SubmitPayment(ctx, payer, inv.ID, "TX-2")
	assert.ErrorIs(t, err, ErrInvoiceState)

	_, err = svc.VerifyPayment(ctx, payer, inv.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	paid, err := svc.VerifyPayment(ctx, cashier, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, cashier.ID, *paid.VerifiedBy)

	_, err = svc.Cancel(ctx, cashier, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceState)

	out, err := svc.Outstanding(ctx, payer.ID)
	require.NoError(t, err)
	assert.Zero(t, out.Count)
}

func TestMarkOverdue(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	notDue := issue(t, svc, "2026-07-01")
	_, err := svc.MarkOverdue(ctx, cashier, notDue.ID)
	assert.ErrorIs(t, err, ErrNotYetDue)

	late := issue(t, svc, "2026-06-01")
	overdue, err := svc.MarkOverdue(ctx, cashier, late.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, overdue.Status)

	_, err = svc.MarkOverdue(ctx, cashier, late.ID)
	assert.ErrorIs(t, err, ErrInvoiceState)

	followed, err := svc.SetFollowUp(ctx, cashier, late.ID, FollowUpRequest{
		FollowUpDate: "2026-06-20",
		Notes:        "Called the applicant",
	})
	require.NoError(t, err)
	require.NotNil(t, followed.FollowUpDate)
	assert.Equal(t, "2026-06-20", followed.FollowUpDate.Format(dateLayout))

	out, err := svc.Outstanding(ctx, payer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, int64(250100), out.Total)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "USD 1250.50", FormatAmount(125050, "USD"))
	assert.Equal(t, "EUR 0.05", FormatAmount(5, "EUR"))
	assert.Equal(t, "USD -3.10", FormatAmount(-310, "USD"))
}
