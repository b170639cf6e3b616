package models

import "time"

type MessageType string

const (
	MessageTypeEmail    MessageType = "email"
	MessageTypeSMS      MessageType = "sms"
	MessageTypeWhatsApp MessageType = "whatsapp"
)

// DevMessage is an outgoing message captured by the development inbox
// instead of being sent to a real provider.
type DevMessage struct {
	ID        int64       `json:"id" db:"id"`
	To        string      `json:"to" db:"recipient"`
	Subject   string      `json:"subject" db:"subject"`
	Content   string      `json:"content" db:"content"`
	Type      MessageType `json:"type" db:"type"`
	Read      bool        `json:"read" db:"read"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// DevInboxSnapshot is the payload sent to inbox stream subscribers.
type DevInboxSnapshot struct {
	Messages    []DevMessage `json:"messages"`
	UnreadCount int          `json:"unreadCount"`
}
