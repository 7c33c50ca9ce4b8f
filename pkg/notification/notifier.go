package notification

// NotificationSystem represents a delivery channel (e.g., email).
type NotificationSystem string

// NoticeType represents a kind of notice (e.g., "contact_message").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	// ContactMessageNotice is sent to the site owner when a visitor submits
	// the contact form.
	ContactMessageNotice NoticeType = "contact_message"
)

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: overrides the template subject when set
	Body    string            // Optional: plain-text content when no template applies
	Data    map[string]string // Template data
}

// NoticeTemplate holds the subject and body templates for a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
