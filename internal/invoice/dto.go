// AngelaMos | 2026
// dto.go

package invoice

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

const dateLayout = time.DateOnly

type CreateInvoiceRequest struct {
	UserID               string  `json:"user_id"                          validate:"required,uuid"`
	Description          string  `json:"description"                      validate:"required,min=3,max=500"`
	Amount               int64   `json:"amount"                           validate:"required,gt=0"`
	Currency             string  `json:"currency"                         validate:"required,len=3,alpha"`
	DueDate              string  `json:"due_date"                         validate:"required,datetime=2006-01-02"`
	PermitID             *string `json:"permit_id,omitempty"              validate:"omitempty,uuid"`
	InspectionID         *string `json:"inspection_id,omitempty"          validate:"omitempty,uuid"`
	IntentRegistrationID *string `json:"intent_registration_id,omitempty" validate:"omitempty,uuid"`
}

type SubmitPaymentRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required,min=3,max=100"`
}

type FollowUpRequest struct {
	FollowUpDate string `json:"follow_up_date" validate:"required,datetime=2006-01-02"`
	Notes        string `json:"notes"          validate:"required,max=2000"`
}

type InvoiceResponse struct {
	ID                   string     `json:"id"`
	InvoiceNumber        string     `json:"invoice_number"`
	UserID               string     `json:"user_id"`
	Description          string     `json:"description"`
	Amount               int64      `json:"amount"`
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	PaymentStatus        string     `json:"payment_status"`
	DueDate              string     `json:"due_date"`
	PermitID             *string    `json:"permit_id,omitempty"`
	InspectionID         *string    `json:"inspection_id,omitempty"`
	IntentRegistrationID *string    `json:"intent_registration_id,omitempty"`
	PaymentReference     *string    `json:"payment_reference,omitempty"`
	PaymentSubmittedAt   *time.Time `json:"payment_submitted_at,omitempty"`
	VerifiedBy           *string    `json:"verified_by,omitempty"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
	FollowUpDate         *string    `json:"follow_up_date,omitempty"`
	FollowUpNotes        *string    `json:"follow_up_notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type ListParams struct {
	core.PageParams
	UserID        string
	Status        string
	PaymentStatus string
}

func ToInvoiceResponse(i *Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                   i.ID,
		InvoiceNumber:        i.InvoiceNumber,
		UserID:               i.UserID,
		Description:          i.Description,
		Amount:               i.Amount,
		Currency:             i.Currency,
		Status:               i.Status,
		PaymentStatus:        i.PaymentStatus,
		DueDate:              i.DueDate.Format(dateLayout),
		PermitID:             i.PermitID,
		InspectionID:         i.InspectionID,
		IntentRegistrationID: i.IntentRegistrationID,
		PaymentReference:     i.PaymentReference,
		PaymentSubmittedAt:   i.PaymentSubmittedAt,
		VerifiedBy:           i.VerifiedBy,
		VerifiedAt:           i.VerifiedAt,
		FollowUpNotes:        i.FollowUpNotes,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}

	if i.FollowUpDate != nil {
		d := i.FollowUpDate.Format(dateLayout)
		resp.FollowUpDate = &d
	}

	return resp
}

func ToInvoiceResponseList(items []Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToInvoiceResponse(&items[i]))
	}
	return responses
}
