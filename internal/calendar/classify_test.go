package calendar

import (
	"testing"
	"time"

	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

func TestClassify(t *testing.T) {
	tt := timetable.Default()
	tests := []struct {
		name string
		date time.Time
		want DayKind
	}{
		{"exam week", local(2025, 12, 17, 0, 0), DayExam},
		{"autumn holiday", local(2025, 10, 20, 0, 0), DayHoliday},
		{"single-day holiday", local(2025, 8, 1, 0, 0), DayHoliday},
		{"winter holiday across new year", local(2026, 1, 2, 0, 0), DayHoliday},
		{"normal day", local(2025, 9, 1, 0, 0), DayNormal},
		{"day after exams", local(2025, 12, 20, 0, 0), DayNormal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tt, tc.date).Kind(); got != tc.want {
				t.Errorf("Kind() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExamTakesPrecedence(t *testing.T) {
	c := Classification{IsHoliday: true, IsExam: true}
	if c.Kind() != DayExam {
		t.Errorf("Kind() = %v, want exam", c.Kind())
	}
}

func TestPlanWeek(t *testing.T) {
	tt := timetable.Default()

	s := NewState(local(2025, 9, 1, 8, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "p", Title: "Piano", Start: local(2025, 9, 2, 18, 0), End: local(2025, 9, 2, 19, 0)},
	})
	plan, err := PlanWeek(tt, s)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(plan[0].School); n != 4 {
		t.Errorf("Monday has %d school blocks, want 4", n)
	}
	if plan[0].School[0].Course.Title != "DCO B" {
		t.Errorf("first Monday block = %q", plan[0].School[0].Course.Title)
	}
	if len(plan[1].Personal) != 1 {
		t.Errorf("Tuesday personal = %+v", plan[1].Personal)
	}
	if len(plan[5].School) != 0 || len(plan[6].School) != 0 {
		t.Error("weekend has school blocks")
	}

	s.SetWeek(local(2025, 12, 15, 0, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "q", Start: local(2025, 12, 17, 9, 0), End: local(2025, 12, 17, 10, 0)},
	})
	plan, err = PlanWeek(tt, s)
	if err != nil {
		t.Fatal(err)
	}
	wed := plan[2]
	if wed.Kind != DayExam || len(wed.School) != 0 || len(wed.Personal) != 0 {
		t.Errorf("exam day plan = %+v", wed)
	}
}
