// AngelaMos | 2026
// entity.go

package permit

import (
	"slices"
	"time"
)

const (
	IntentPending     = "pending"
	IntentUnderReview = "under_review"
	IntentApproved    = "approved"
	IntentRejected    = "rejected"
)

const (
	AppDraft                   = "draft"
	AppSubmitted               = "submitted"
	AppUnderInitialReview      = "under_initial_review"
	AppInitialAssessmentPassed = "initial_assessment_passed"
	AppUnderTechnical          = "under_technical_assessment"
	AppRequiresClarification   = "requires_clarification"
	AppApproved                = "approved"
	AppRejected                = "rejected"
)

var intentTransitions = map[string][]string{
	IntentPending:     {IntentUnderReview},
	IntentUnderReview: {IntentApproved, IntentRejected},
}

var applicationTransitions = map[string][]string{
	AppDraft:                   {AppSubmitted},
	AppSubmitted:               {AppUnderInitialReview},
	AppUnderInitialReview:      {AppInitialAssessmentPassed, AppRequiresClarification, AppRejected},
	AppInitialAssessmentPassed: {AppUnderTechnical},
	AppUnderTechnical:          {AppApproved, AppRejected, AppRequiresClarification},
	AppRequiresClarification:   {AppSubmitted},
}

func CanTransitionIntent(from, to string) bool {
	return slices.Contains(intentTransitions[from], to)
}

func CanTransitionApplication(from, to string) bool {
	return slices.Contains(applicationTransitions[from], to)
}

func IsFinalApplicationStatus(status string) bool {
	return status == AppApproved || status == AppRejected
}

type IntentRegistration struct {
	ID                         string     `db:"id"`
	UserID                     string     `db:"user_id"`
	EntityID                   string     `db:"entity_id"`
	ActivityLevel              string     `db:"activity_level"`
	ActivityDescription        string     `db:"activity_description"`
	PreparatoryWorkDescription string     `db:"preparatory_work_description"`
	LocationDescription        string     `db:"location_description"`
	CommencementDate           time.Time  `db:"commencement_date"`
	CompletionDate             time.Time  `db:"completion_date"`
	Status                     string     `db:"status"`
	ReviewNotes                *string    `db:"review_notes"`
	ReviewedBy                 *string    `db:"reviewed_by"`
	ReviewedAt                 *time.Time `db:"reviewed_at"`
	CreatedAt                  time.Time  `db:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at"`
}

type Application struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	EntityID         string     `db:"entity_id"`
	Title            string     `db:"title"`
	PermitType       string     `db:"permit_type"`
	Description      string     `db:"description"`
	CommencementDate time.Time  `db:"commencement_date"`
	CompletionDate   time.Time  `db:"completion_date"`
	Status           string     `db:"status"`
	PermitNumber     *string    `db:"permit_number"`
	SubmittedAt      *time.Time `db:"submitted_at"`
	DecidedAt        *time.Time `db:"decided_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// Assessment is one recorded review step on an application.
type Assessment struct {
	ID            string    `db:"id"`
	ApplicationID string    `db:"application_id"`
	AssessorID    string    `db:"assessor_id"`
	FromStatus    string    `db:"from_status"`
	ToStatus      string    `db:"to_status"`
	Feedback      string    `db:"feedback"`
	CreatedAt     time.Time `db:"created_at"`
}

// ApplicationActivity is an application joined with its most recent
// assessment feedback, as shown in the activity feed.
type ApplicationActivity struct {
	Application
	LatestFeedback *string `db:"latest_feedback"`
}

// IntentTransition describes a guarded intent status change. The update
// only applies while the record is still in From.
type IntentTransition struct {
	ID         string
	From       string
	To         string
	ReviewerID string
	Notes      string
}

// ApplicationTransition describes a guarded application status change.
// When Assessment is set it is written in the same transaction.
type ApplicationTransition struct {
	ID           string
	From         string
	To           string
	PermitNumber *string
	Assessment   *Assessment
}
