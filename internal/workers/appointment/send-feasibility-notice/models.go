// internal/workers/appointment/send-feasibility-notice/models.go
package sendnotice

// Input is the output of evaluate-feasibility plus where to send it.
type Input struct {
	CandidateName  string   `json:"name"`
	RecipientEmail string   `json:"recipientEmail,omitempty"`
	RecipientPhone string   `json:"recipientPhone,omitempty"`
	Round          string   `json:"round"`
	GPOpenDate     string   `json:"gpOpenDate"`
	IsPossible     bool     `json:"isPossible"`
	Messages       []string `json:"messages"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
