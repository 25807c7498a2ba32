// Package timetable holds the compiled-in school configuration: the weekly
// schedule, the course lookup table and the holiday and exam date ranges.
package timetable

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for range membership.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format of schedule entries.
const ClockLayout = "15:04"

// Entry is one recurring slot of the weekly school schedule.
type Entry struct {
	ID       string `json:"id"`
	Weekday  int    `json:"weekday"` // 1 = Monday .. 5 = Friday
	Start    string `json:"start"`
	End      string `json:"end"`
	CourseID string `json:"course_id"`
}

// Course is the display information attached to a course identifier.
type Course struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	Teacher string `json:"teacher"`
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether the local calendar day of t falls inside the range.
// ISO dates compare correctly as strings.
func (r DateRange) Contains(t time.Time) bool {
	day := t.Format(DateLayout)
	return day >= r.Start && day <= r.End
}

// Timetable is the static configuration consumed by the calendar and render
// packages.
type Timetable struct {
	Entries  []Entry
	Courses  map[string]Course
	Holidays []DateRange
	Exams    []DateRange
}

// Course returns the course for id. Unknown identifiers yield a course whose
// title is the identifier itself and whose colour and teacher are empty.
func (t *Timetable) Course(id string) Course {
	if c, ok := t.Courses[id]; ok {
		return c
	}
	return Course{ID: id, Title: id}
}

// EntriesFor returns the entries of the given ISO weekday in schedule order.
func (t *Timetable) EntriesFor(weekday int) []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Weekday == weekday {
			out = append(out, e)
		}
	}
	return out
}

// Titles returns the course title of every entry, in schedule order.
func (t *Timetable) Titles() []string {
	titles := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		titles = append(titles, t.Course(e.CourseID).Title)
	}
	return titles
}

// ISOWeekday converts a time.Weekday to 1 = Monday .. 7 = Sunday.
func ISOWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// At combines the calendar day of date with a "15:04" clock value, in the
// location of date.
func At(date time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing clock %q: %w", clock, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}

// Validate checks that every entry has a known weekday, well-formed clock
// values and a positive duration.
func (t *Timetable) Validate() error {
	for _, e := range t.Entries {
		if e.Weekday < 1 || e.Weekday > 7 {
			return fmt.Errorf("entry %s: invalid weekday %d", e.ID, e.Weekday)
		}
		start, err := time.Parse(ClockLayout, e.Start)
		if err != nil {
			return fmt.Errorf("entry %s: invalid start: %w", e.ID, err)
		}
		end, err := time.Parse(ClockLayout, e.End)
		if err != nil {
			return fmt.Errorf("entry %s: invalid end: %w", e.ID, err)
		}
		if !end.After(start) {
			return fmt.Errorf("entry %s: end %s not after start %s", e.ID, e.End, e.Start)
		}
	}
	return nil
}
