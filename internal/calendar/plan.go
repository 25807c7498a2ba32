package calendar

import (
	"time"

	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

// DayPlan is what a single day of the displayed week shows.
// Exam and holiday days carry neither school occurrences nor personal events.
type DayPlan struct {
	Date           time.Time
	Classification Classification
	Kind           DayKind
	School         []Occurrence
	Personal       []models.PersonalEvent
}

// PlanWeek classifies each day of the displayed week and assigns the school
// occurrences and personal events that belong to it.
func PlanWeek(tt *timetable.Timetable, s *State) ([7]DayPlan, error) {
	var plan [7]DayPlan

	occurrences, err := WeekOccurrences(tt, s.Anchor())
	if err != nil {
		return plan, err
	}

	for i, date := range s.CurrentWeekDates() {
		c := Classify(tt, date)
		day := DayPlan{
			Date:           date,
			Classification: c,
			Kind:           c.Kind(),
		}
		if day.Kind == DayNormal {
			for _, o := range occurrences {
				if sameDay(o.Start, date) {
					day.School = append(day.School, o)
				}
			}
			day.Personal = s.EventsOn(date)
		}
		plan[i] = day
	}

	return plan, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
