package entity

// LINE webhook envelope. Timestamps are epoch milliseconds as delivered by
// the platform.

const (
	EventTypeMessage = "message"

	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string      `json:"type"`
	Timestamp  int64       `json:"timestamp"`
	ReplyToken string      `json:"replyToken"`
	Source     EventSource `json:"source"`
	Message    Message     `json:"message"`
}

type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
