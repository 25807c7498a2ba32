package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/simplygenda/backend/internal/timetable"
)

// Occurrence is one concrete instance of a schedule entry.
type Occurrence struct {
	Entry  timetable.Entry
	Course timetable.Course
	Start  time.Time
	End    time.Time
}

var isoWeekdays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// WeekOccurrences expands the weekly schedule into the week starting at
// monday. Results follow the static entry order.
func WeekOccurrences(tt *timetable.Timetable, monday time.Time) ([]Occurrence, error) {
	monday = StartOfWeek(monday)
	next := monday.AddDate(0, 0, 7)

	var out []Occurrence
	for _, e := range tt.Entries {
		if e.Weekday < 1 || e.Weekday > 7 {
			return nil, fmt.Errorf("entry %s: invalid weekday %d", e.ID, e.Weekday)
		}
		first, err := timetable.At(monday, e.Start)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if _, err := timetable.At(monday, e.End); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   first,
			Byweekday: []rrule.Weekday{isoWeekdays[e.Weekday-1]},
		})
		if err != nil {
			return nil, fmt.Errorf("entry %s: building rule: %w", e.ID, err)
		}

		course := tt.Course(e.CourseID)
		for _, start := range rule.Between(monday, next, true) {
			if !start.Before(next) {
				continue
			}
			// Wall-clock times are rebuilt on the occurrence day.
			day := start.In(monday.Location())
			s, _ := timetable.At(day, e.Start)
			en, _ := timetable.At(day, e.End)
			out = append(out, Occurrence{
				Entry:  e,
				Course: course,
				Start:  s,
				End:    en,
			})
		}
	}

	return out, nil
}
