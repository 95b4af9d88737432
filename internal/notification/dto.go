// AngelaMos | 2026
// dto.go

package notification

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type ListParams struct {
	core.PageParams
	UnreadOnly bool
}

func ToNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Severity:  n.Severity,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationResponseList(items []Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToNotificationResponse(&items[i]))
	}
	return responses
}
