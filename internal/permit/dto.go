// AngelaMos | 2026
// dto.go

package permit

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/document"
)

const dateLayout = time.DateOnly

type SubmitIntentRequest struct {
	EntityID                   string `json:"entity_id"                    validate:"required,uuid"`
	ActivityLevel              string `json:"activity_level"               validate:"required,oneof=level_1 level_2 level_3"`
	ActivityDescription        string `json:"activity_description"         validate:"required,min=10,max=5000"`
	PreparatoryWorkDescription string `json:"preparatory_work_description" validate:"required,min=10,max=5000"`
	LocationDescription        string `json:"location_description"         validate:"required,min=3,max=2000"`
	CommencementDate           string `json:"commencement_date"            validate:"required,datetime=2006-01-02"`
	CompletionDate             string `json:"completion_date"              validate:"required,datetime=2006-01-02"`
}

type SubmitApplicationRequest struct {
	EntityID         string `json:"entity_id"         validate:"required,uuid"`
	Title            string `json:"title"             validate:"required,min=3,max=200"`
	PermitType       string `json:"permit_type"       validate:"required,min=2,max=100"`
	Description      string `json:"description"       validate:"required,min=10,max=10000"`
	CommencementDate string `json:"commencement_date" validate:"required,datetime=2006-01-02"`
	CompletionDate   string `json:"completion_date"   validate:"required,datetime=2006-01-02"`
}

type TransitionRequest struct {
	Status   string `json:"status"   validate:"required"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

type IntentResponse struct {
	ID                         string     `json:"id"`
	UserID                     string     `json:"user_id"`
	EntityID                   string     `json:"entity_id"`
	ActivityLevel              string     `json:"activity_level"`
	ActivityDescription        string     `json:"activity_description"`
	PreparatoryWorkDescription string     `json:"preparatory_work_description"`
	LocationDescription        string     `json:"location_description"`
	CommencementDate           string     `json:"commencement_date"`
	CompletionDate             string     `json:"completion_date"`
	Status                     string     `json:"status"`
	ReviewNotes                *string    `json:"review_notes,omitempty"`
	ReviewedBy                 *string    `json:"reviewed_by,omitempty"`
	ReviewedAt                 *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

type ApplicationResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	EntityID         string     `json:"entity_id"`
	Title            string     `json:"title"`
	PermitType       string     `json:"permit_type"`
	Description      string     `json:"description"`
	CommencementDate string     `json:"commencement_date"`
	CompletionDate   string     `json:"completion_date"`
	Status           string     `json:"status"`
	PermitNumber     *string    `json:"permit_number,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AssessmentResponse struct {
	ID         string    `json:"id"`
	AssessorID string    `json:"assessor_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Feedback   string    `json:"feedback"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmissionResponse pairs a created record with the outcome of attaching
// the submitter's draft documents to it.
type SubmissionResponse[T any] struct {
	Record    T                   `json:"record"`
	Documents document.LinkResult `json:"documents"`
}

type ListParams struct {
	core.PageParams
	UserID string
	Status string
}

func ToIntentResponse(i *IntentRegistration) IntentResponse {
	return IntentResponse{
		ID:                         i.ID,
		UserID:                     i.UserID,
		EntityID:                   i.EntityID,
		ActivityLevel:              i.ActivityLevel,
		ActivityDescription:        i.ActivityDescription,
		PreparatoryWorkDescription: i.PreparatoryWorkDescription,
		LocationDescription:        i.LocationDescription,
		CommencementDate:           i.CommencementDate.Format(dateLayout),
		CompletionDate:             i.CompletionDate.Format(dateLayout),
		Status:                     i.Status,
		ReviewNotes:                i.ReviewNotes,
		ReviewedBy:                 i.ReviewedBy,
		ReviewedAt:                 i.ReviewedAt,
		CreatedAt:                  i.CreatedAt,
		UpdatedAt:                  i.UpdatedAt,
	}
}

func ToIntentResponseList(items []IntentRegistration) []IntentResponse {
	responses := make([]IntentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToIntentResponse(&items[i]))
	}
	return responses
}

func ToApplicationResponse(a *Application) ApplicationResponse {
	return ApplicationResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		EntityID:         a.EntityID,
		Title:            a.Title,
		PermitType:       a.PermitType,
		Description:      a.Description,
		CommencementDate: a.CommencementDate.Format(dateLayout),
		CompletionDate:   a.CompletionDate.Format(dateLayout),
		Status:           a.Status,
		PermitNumber:     a.PermitNumber,
		SubmittedAt:      a.SubmittedAt,
		DecidedAt:        a.DecidedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func ToApplicationResponseList(items []Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToApplicationResponse(&items[i]))
	}
	return responses
}

func ToAssessmentResponseList(items []Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(items))
	for _, a := range items {
		responses = append(responses, AssessmentResponse{
			ID:         a.ID,
			AssessorID: a.AssessorID,
			FromStatus: a.FromStatus,
			ToStatus:   a.ToStatus,
			Feedback:   a.Feedback,
			CreatedAt:  a.CreatedAt,
		})
	}
	return responses
}
