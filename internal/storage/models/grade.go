package models

import (
	"time"
)

// Grade bounds of the Swiss 1–6 scale. Zero is accepted for missed tests.
const (
	MinGrade = 0
	MaxGrade = 6
)

// Grade is one mark recorded for a subject.
type Grade struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Grade     float64   `json:"grade"`
	CreatedAt time.Time `json:"created_at"`
}
