package calendar

import (
	"time"

	"github.com/simplygenda/backend/internal/timetable"
)

// DayKind is the rendering category of a day.
type DayKind string

const (
	DayNormal  DayKind = "normal"
	DayHoliday DayKind = "holiday"
	DayExam    DayKind = "exam"
)

// Classification reports which static date lists contain a day.
type Classification struct {
	IsHoliday bool `json:"is_holiday"`
	IsExam    bool `json:"is_exam"`
}

// Kind resolves the classification with the ordered policy
// exam, then holiday, then normal.
func (c Classification) Kind() DayKind {
	switch {
	case c.IsExam:
		return DayExam
	case c.IsHoliday:
		return DayHoliday
	default:
		return DayNormal
	}
}

// Classify checks date against the holiday and exam ranges of tt.
func Classify(tt *timetable.Timetable, date time.Time) Classification {
	return Classification{
		IsHoliday: inAny(tt.Holidays, date),
		IsExam:    inAny(tt.Exams, date),
	}
}

func inAny(ranges []timetable.DateRange, date time.Time) bool {
	for _, r := range ranges {
		if r.Contains(date) {
			return true
		}
	}
	return false
}
