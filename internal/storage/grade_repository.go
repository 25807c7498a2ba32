package storage

import (
	"context"
	"fmt"
)

// GradeRepository provides data access for recorded grades.
type GradeRepository struct {
	BaseRepository
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *DB) *GradeRepository {
	return &GradeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// LoadGrades returns the user's grades grouped by subject, oldest first.
func (r *GradeRepository) LoadGrades(ctx context.Context, userID string) (map[string][]float64, error) {
	rows, err := r.DB().Query(ctx, `
		SELECT subject, grade FROM grades WHERE user_id = ? ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying grades: %w", err)
	}
	defer rows.Close()

	grades := make(map[string][]float64)
	for rows.Next() {
		var subject string
		var grade float64
		if err := rows.Scan(&subject, &grade); err != nil {
			return nil, fmt.Errorf("scanning grade: %w", err)
		}
		grades[subject] = append(grades[subject], grade)
	}

	return grades, rows.Err()
}

// AddGrade records a grade for a subject.
func (r *GradeRepository) AddGrade(ctx context.Context, userID, subject string, grade float64) error {
	_, err := r.DB().Exec(ctx, `
		INSERT INTO grades (id, user_id, subject, grade, created_at) VALUES (?, ?, ?, ?, ?)
	`, GenerateID(), userID, subject, grade, r.Now())
	if err != nil {
		return fmt.Errorf("inserting grade: %w", err)
	}
	return nil
}
