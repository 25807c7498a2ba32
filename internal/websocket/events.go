package websocket

import (
	"log"
)

// EventBroadcaster encodes calendar events and hands them to the hub.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// CalendarChanged pushes a freshly rendered view to the user's connections.
func (b *EventBroadcaster) CalendarChanged(userID string, view any) {
	b.send(userID, NewMessage(TypeCalendarChanged, view))
}

// Now pushes the minute tick: status line and now-line offset.
func (b *EventBroadcaster) Now(userID string, payload NowPayload) {
	b.send(userID, NewMessage(TypeCalendarNow, payload))
}

// Reminder announces that a personal event starts soon.
func (b *EventBroadcaster) Reminder(userID string, payload ReminderPayload) {
	b.send(userID, NewMessage(TypeEventReminder, payload))
}

// Notification sends a dismissible notification to one user.
func (b *EventBroadcaster) Notification(userID, level, title, message string) {
	b.send(userID, NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// NotifyAll sends a notification to every connected client.
func (b *EventBroadcaster) NotifyAll(level, title, message string) {
	if b == nil || b.hub == nil {
		return
	}
	data, err := NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}).JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *EventBroadcaster) send(userID string, msg Message) {
	if b == nil || b.hub == nil {
		return
	}
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastTo(userID, data)
}
