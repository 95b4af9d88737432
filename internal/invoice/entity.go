// AngelaMos | 2026
// entity.go

package invoice

import (
	"time"
)

const (
	StatusIssued    = "issued"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
	StatusPaid      = "paid"
)

const (
	PaymentUnpaid              = "unpaid"
	PaymentPendingVerification = "pending_verification"
	PaymentPaid                = "paid"
)

// Invoice amounts are stored in minor units of Currency. Invoices are
// never deleted; cancellation is a status.
type Invoice struct {
	ID                   string     `db:"id"`
	InvoiceNumber        string     `db:"invoice_number"`
	UserID               string     `db:"user_id"`
	Description          string     `db:"description"`
	Amount               int64      `db:"amount"`
	Currency             string     `db:"currency"`
	Status               string     `db:"status"`
	PaymentStatus        string     `db:"payment_status"`
	DueDate              time.Time  `db:"due_date"`
	PermitID             *string    `db:"permit_id"`
	InspectionID         *string    `db:"inspection_id"`
	IntentRegistrationID *string    `db:"intent_registration_id"`
	PaymentReference     *string    `db:"payment_reference"`
	PaymentSubmittedAt   *time.Time `db:"payment_submitted_at"`
	VerifiedBy           *string    `db:"verified_by"`
	VerifiedAt           *time.Time `db:"verified_at"`
	FollowUpDate         *time.Time `db:"follow_up_date"`
	FollowUpNotes        *string    `db:"follow_up_notes"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

func (i *Invoice) IsOpen() bool {
	return i.Status == StatusIssued || i.Status == StatusOverdue
}

// Outstanding summarises unpaid open invoices.
type Outstanding struct {
	Count int   `db:"count"`
	Total int64 `db:"total"`
}
