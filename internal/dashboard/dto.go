// AngelaMos | 2026
// dto.go

package dashboard

import "time"

// ActivityItem is one row of the merged feed. Label and Tone are display
// hints derived from Status.
type ActivityItem struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Label       string    `json:"label"`
	Tone        string    `json:"tone"`
	Timestamp   time.Time `json:"timestamp"`
}

type ApplicationCounts struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	NeedsAction int `json:"needs_action"`
}

type Stats struct {
	Applications        ApplicationCounts `json:"applications"`
	PendingIntents      int               `json:"pending_intents"`
	OutstandingInvoices int               `json:"outstanding_invoices"`
	OutstandingAmount   int64             `json:"outstanding_amount"`
	UnreadNotifications int               `json:"unread_notifications"`
	Unavailable         []string          `json:"unavailable,omitempty"`
}

type ActivityResponse struct {
	Items []ActivityItem `json:"items"`
	Limit int            `json:"limit"`
}
