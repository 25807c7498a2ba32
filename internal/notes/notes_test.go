package notes

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

type stubStore struct {
	grades  map[string][]float64
	loadErr error
	addErr  error
	added   int
}

func (s *stubStore) LoadGrades(ctx context.Context, userID string) (map[string][]float64, error) {
	return s.grades, s.loadErr
}

func (s *stubStore) AddGrade(ctx context.Context, userID, subject string, grade float64) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added++
	if s.grades == nil {
		s.grades = make(map[string][]float64)
	}
	s.grades[subject] = append(s.grades[subject], grade)
	return nil
}

var (
	student = &models.User{ID: "s1", Role: models.RoleStudent}
	private = &models.User{ID: "p1", Role: models.RolePrivate}
)

func TestSubjects(t *testing.T) {
	got := Subjects(timetable.Default())
	want := []string{"Anglais", "DCO A", "DCO B", "DCO C", "DCO D", "DCO E", "Dactylographie", "EPCO", "Sport"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subjects() = %v, want %v", got, want)
	}
}

func TestTable(t *testing.T) {
	store := &stubStore{grades: map[string][]float64{"DCO A": {4, 5}}}
	svc := NewService(store, timetable.Default())

	rows, err := svc.Table(context.Background(), student)
	if err != nil {
		t.Fatal(err)
	}
	byName := make(map[string]Row)
	for _, r := range rows {
		byName[r.Subject] = r
	}
	if got := byName["DCO A"].Average; got != "4.50" {
		t.Errorf("DCO A average = %q, want 4.50", got)
	}
	if got := byName["Sport"].Average; got != NoAverage {
		t.Errorf("Sport average = %q", got)
	}

	if _, err := svc.Table(context.Background(), private); !errors.Is(err, ErrNotStudent) {
		t.Errorf("private Table() error = %v", err)
	}
}

func TestTableLoadFailureIsEmpty(t *testing.T) {
	svc := NewService(&stubStore{loadErr: errors.New("offline")}, timetable.Default())
	rows, err := svc.Table(context.Background(), student)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	for _, r := range rows {
		if len(r.Grades) != 0 || r.Average != NoAverage {
			t.Errorf("row = %+v", r)
		}
	}
}

func TestAddGrade(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, timetable.Default())
	ctx := context.Background()

	if err := svc.AddGrade(ctx, student, "DCO B", 6.5); !apperr.IsValidation(err) {
		t.Errorf("grade 6.5 error = %v", err)
	}
	if err := svc.AddGrade(ctx, student, "DCO B", -1); !apperr.IsValidation(err) {
		t.Errorf("grade -1 error = %v", err)
	}
	if err := svc.AddGrade(ctx, student, "Examens", 4); !apperr.IsValidation(err) {
		t.Errorf("unknown subject error = %v", err)
	}
	if store.added != 0 {
		t.Fatalf("store called on invalid input")
	}

	if err := svc.AddGrade(ctx, student, "DCO B", 5.5); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddGrade(ctx, private, "DCO B", 5); !errors.Is(err, ErrNotStudent) {
		t.Errorf("private AddGrade() error = %v", err)
	}

	store.addErr = errors.New("down")
	if err := svc.AddGrade(ctx, student, "DCO B", 4); !apperr.IsCollaborator(err) {
		t.Errorf("store failure error = %v", err)
	}
}

func TestAverage(t *testing.T) {
	if got := Average([]float64{4, 5}); got != "4.50" {
		t.Errorf("Average = %q", got)
	}
	if got := Average([]float64{5, 5.5, 4}); got != "4.83" {
		t.Errorf("Average = %q", got)
	}
	if got := Average(nil); got != NoAverage {
		t.Errorf("Average(nil) = %q", got)
	}
}
