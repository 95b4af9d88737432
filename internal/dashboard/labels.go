// AngelaMos | 2026
// labels.go

package dashboard

import (
	"github.com/carterperez-dev/permitdesk/internal/invoice"
	"github.com/carterperez-dev/permitdesk/internal/notification"
	"github.com/carterperez-dev/permitdesk/internal/permit"
)

const (
	ToneNeutral = "neutral"
	ToneInfo    = "info"
	ToneSuccess = "success"
	ToneWarning = "warning"
	ToneDanger  = "danger"
)

type presentation struct {
	Label string
	Tone  string
}

var applicationLabels = map[string]presentation{
	permit.AppDraft:                   {"Draft", ToneNeutral},
	permit.AppSubmitted:               {"Submitted", ToneInfo},
	permit.AppUnderInitialReview:      {"Initial review", ToneInfo},
	permit.AppInitialAssessmentPassed: {"Initial assessment passed", ToneInfo},
	permit.AppUnderTechnical:          {"Technical assessment", ToneInfo},
	permit.AppRequiresClarification:   {"Clarification needed", ToneWarning},
	permit.AppApproved:                {"Approved", ToneSuccess},
	permit.AppRejected:                {"Rejected", ToneDanger},
}

var invoiceLabels = map[string]presentation{
	invoice.StatusIssued:               {"Payment due", ToneWarning},
	invoice.StatusOverdue:              {"Overdue", ToneDanger},
	invoice.StatusCancelled:            {"Cancelled", ToneNeutral},
	invoice.StatusPaid:                 {"Paid", ToneSuccess},
	invoice.PaymentPendingVerification: {"Payment under review", ToneInfo},
}

var notificationTones = map[string]string{
	notification.SeverityInfo:    ToneInfo,
	notification.SeveritySuccess: ToneSuccess,
	notification.SeverityWarning: ToneWarning,
	notification.SeverityError:   ToneDanger,
}

var defaultPresentation = presentation{Label: "Updated", Tone: ToneNeutral}

func applicationPresentation(status string) presentation {
	if p, ok := applicationLabels[status]; ok {
		return p
	}
	return defaultPresentation
}

// invoicePresentation prefers the payment state while a payment is waiting
// for verification, and the invoice status otherwise.
func invoicePresentation(status, paymentStatus string) presentation {
	key := status
	if paymentStatus == invoice.PaymentPendingVerification && status != invoice.StatusCancelled {
		key = paymentStatus
	}
	if p, ok := invoiceLabels[key]; ok {
		return p
	}
	return defaultPresentation
}

func notificationPresentation(severity string, read bool) presentation {
	tone, ok := notificationTones[severity]
	if !ok {
		tone = ToneNeutral
	}
	if read {
		return presentation{Label: "Read", Tone: tone}
	}
	return presentation{Label: "New", Tone: tone}
}
