package domain

type Sender string

const (
	SenderMe    Sender = "me"
	SenderOther Sender = "other"
)

type Message struct {
	ID        int    `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type Conversation struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	LastMessage string `json:"last_message"`
	AvatarURL   string `json:"avatar_url"`
}

// Notification is read-only.
type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}
