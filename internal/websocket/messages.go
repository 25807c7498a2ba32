package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeCalendarChanged MessageType = "calendar.changed"
	TypeCalendarNow     MessageType = "calendar.now"
	TypeEventReminder   MessageType = "event.reminder"
	TypeNotification    MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// NowPayload is the payload for calendar.now events.
type NowPayload struct {
	Status  string   `json:"status"`
	NowLine *float64 `json:"now_line,omitempty"`
	Zoom    int      `json:"zoom"`
}

// ReminderPayload is the payload for event.reminder events.
type ReminderPayload struct {
	EventID         string    `json:"event_id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	ReminderMinutes int       `json:"reminder_minutes"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
