// Package notes serves the grades table of student accounts.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

// ErrNotStudent is returned when a non-student opens the grades table.
var ErrNotStudent = errors.New("grades are only available to students")

// NoAverage is shown for subjects without grades.
const NoAverage = "—"

// Titles containing any of these words are not graded subjects.
var skipped = []string{"Rattrapage / Congé", "Rattrapage", "Congé", "Test", "Examens"}

// Store is the grade part of the persistence collaborator.
type Store interface {
	LoadGrades(ctx context.Context, userID string) (map[string][]float64, error)
	AddGrade(ctx context.Context, userID, subject string, grade float64) error
}

// Row is one subject of the grades table.
type Row struct {
	Subject string    `json:"subject"`
	Grades  []float64 `json:"grades"`
	Average string    `json:"average"`
}

// Subjects returns the distinct gradable course titles, sorted.
func Subjects(tt *timetable.Timetable) []string {
	seen := make(map[string]bool)
	var out []string
	for _, title := range tt.Titles() {
		if seen[title] || isSkipped(title) {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

func isSkipped(title string) bool {
	lower := strings.ToLower(title)
	for _, s := range skipped {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Service builds the grades table and records new grades.
type Service struct {
	store    Store
	subjects []string
}

// NewService creates a grades service for the subjects of tt.
func NewService(store Store, tt *timetable.Timetable) *Service {
	return &Service{store: store, subjects: Subjects(tt)}
}

// Subjects returns the gradable subjects.
func (s *Service) Subjects() []string {
	return append([]string(nil), s.subjects...)
}

// Table returns one row per subject. A failed load is logged and shown as an
// empty table.
func (s *Service) Table(ctx context.Context, user *models.User) ([]Row, error) {
	if !user.IsStudent() {
		return nil, ErrNotStudent
	}

	grades, err := s.store.LoadGrades(ctx, user.ID)
	if err != nil {
		log.Printf("Failed to load grades for %s: %v", user.ID, err)
		grades = nil
	}

	rows := make([]Row, 0, len(s.subjects))
	for _, subject := range s.subjects {
		g := grades[subject]
		if g == nil {
			g = []float64{}
		}
		rows = append(rows, Row{Subject: subject, Grades: g, Average: Average(g)})
	}
	return rows, nil
}

// AddGrade records grade for subject after validating both.
func (s *Service) AddGrade(ctx context.Context, user *models.User, subject string, grade float64) error {
	if !user.IsStudent() {
		return ErrNotStudent
	}
	if !s.known(subject) {
		return apperr.Invalid("subject", fmt.Sprintf("Matière inconnue : %s", subject))
	}
	if math.IsNaN(grade) || grade < models.MinGrade || grade > models.MaxGrade {
		return apperr.Invalid("grade", "La note doit être comprise entre 0 et 6.")
	}

	if err := s.store.AddGrade(ctx, user.ID, subject, grade); err != nil {
		return apperr.Collaborator("adding grade", err)
	}
	return nil
}

func (s *Service) known(subject string) bool {
	for _, known := range s.subjects {
		if known == subject {
			return true
		}
	}
	return false
}

// Average formats the mean of grades with two decimals, or NoAverage.
func Average(grades []float64) string {
	if len(grades) == 0 {
		return NoAverage
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	return fmt.Sprintf("%.2f", sum/float64(len(grades)))
}
