// Package models contains the domain models for the application.
package models

import (
	"time"
)

// CalendarEvent is a VEVENT read from an iCalendar document.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color,omitempty"`
}

// ImportResult summarizes an iCalendar import.
type ImportResult struct {
	EventsFound    int       `json:"events_found"`
	EventsImported int       `json:"events_imported"`
	EventsSkipped  int       `json:"events_skipped"`
	ImportedAt     time.Time `json:"imported_at"`
}
