package models

import (
	"time"
)

// Default values applied to personal events.
const (
	DefaultEventColor      = "#e91e63"
	DefaultReminderMinutes = 10
	DefaultEventTitle      = "Événement"
)

// PersonalEvent is a user-owned, one-off calendar entry.
type PersonalEvent struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Color           string    `json:"color"`
	ReminderMinutes int       `json:"reminder_minutes"`
}

// Contains reports whether t lies in [Start, End).
func (e PersonalEvent) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// EventFields are the user-editable fields of a personal event.
type EventFields struct {
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Color           string    `json:"color"`
	ReminderMinutes int       `json:"reminder_minutes"`
}
