// Package calendar holds the calendar state of one user and the day
// classification and weekly template expansion built on top of it.
package calendar

import (
	"log"
	"slices"
	"time"

	"github.com/rdleal/intervalst/interval"

	"github.com/simplygenda/backend/internal/grid"
	"github.com/simplygenda/backend/internal/storage/models"
)

// StartOfWeek returns local midnight of the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// span keys the interval index. Identical spans share one tree node; times
// are kept in UTC so equal instants compare equal as map keys.
type span struct {
	start, end time.Time
}

// State is the displayed week, the zoom level and the user's personal events.
// It is not safe for concurrent use; callers serialize access.
type State struct {
	anchor time.Time
	zoom   int
	events []models.PersonalEvent

	index *interval.SearchTree[span, time.Time]
	spans map[span][]int
}

// NewState returns a state showing the week of now at the default zoom.
func NewState(now time.Time) *State {
	s := &State{
		anchor: StartOfWeek(now),
		zoom:   grid.DefaultZoom,
	}
	s.SetEvents(nil)
	return s
}

// Anchor returns the Monday of the displayed week.
func (s *State) Anchor() time.Time {
	return s.anchor
}

// Zoom returns the current zoom level in pixels per hour.
func (s *State) Zoom() int {
	return s.zoom
}

// CurrentWeekDates returns the seven days of the displayed week starting on
// Monday.
func (s *State) CurrentWeekDates() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = s.anchor.AddDate(0, 0, i)
	}
	return days
}

// SetWeek displays the week containing t.
func (s *State) SetWeek(t time.Time) {
	s.anchor = StartOfWeek(t)
}

// ShiftWeek moves the displayed week by n weeks.
func (s *State) ShiftWeek(n int) {
	s.anchor = s.anchor.AddDate(0, 0, 7*n)
}

// SetZoom stores z clamped to the supported range.
func (s *State) SetZoom(z int) {
	s.zoom = grid.ClampZoom(z)
}

// ZoomIn increases the zoom level by one step.
func (s *State) ZoomIn() {
	s.zoom = grid.ZoomIn(s.zoom)
}

// ZoomOut decreases the zoom level by one step.
func (s *State) ZoomOut() {
	s.zoom = grid.ZoomOut(s.zoom)
}

// SetEvents replaces the personal-event collection and rebuilds the index.
func (s *State) SetEvents(events []models.PersonalEvent) {
	s.events = append([]models.PersonalEvent(nil), events...)
	s.index = interval.NewSearchTree[span](func(x, y time.Time) int { return x.Compare(y) })
	s.spans = make(map[span][]int)

	for i, e := range s.events {
		if !e.End.After(e.Start) {
			// Loads are not validated; empty and reversed events stay
			// listed but are never "current".
			continue
		}
		k := span{e.Start.UTC(), e.End.UTC()}
		if _, ok := s.spans[k]; !ok {
			if err := s.index.Insert(e.Start, e.End, k); err != nil {
				log.Printf("Failed to index event %s: %v", e.ID, err)
				continue
			}
		}
		s.spans[k] = append(s.spans[k], i)
	}
}

// Events returns a copy of the collection in load order.
func (s *State) Events() []models.PersonalEvent {
	return append([]models.PersonalEvent(nil), s.events...)
}

// Event returns the event with the given ID.
func (s *State) Event(id string) (models.PersonalEvent, bool) {
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return models.PersonalEvent{}, false
}

// EventsOn returns the events whose start falls on the calendar day of date,
// in collection order.
func (s *State) EventsOn(date time.Time) []models.PersonalEvent {
	y, m, d := date.Date()
	var out []models.PersonalEvent
	for _, e := range s.events {
		ey, em, ed := e.Start.In(date.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	return out
}

// EventAt returns the first event in collection order with start <= t < end.
func (s *State) EventAt(t time.Time) (models.PersonalEvent, bool) {
	best := -1
	for _, i := range s.overlapping(t, t) {
		if s.events[i].Contains(t) && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return models.PersonalEvent{}, false
	}
	return s.events[best], true
}

// EventsBetween returns the events overlapping [from, to], in collection order.
func (s *State) EventsBetween(from, to time.Time) []models.PersonalEvent {
	idx := s.overlapping(from, to)
	out := make([]models.PersonalEvent, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.events[i])
	}
	return out
}

// overlapping returns sorted collection indices of the events whose span
// intersects the closed interval [from, to].
func (s *State) overlapping(from, to time.Time) []int {
	keys, ok := s.index.AllIntersections(from, to)
	if !ok {
		return nil
	}

	seen := make(map[span]bool, len(keys))
	var idx []int
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		idx = append(idx, s.spans[k]...)
	}
	slices.Sort(idx)
	return idx
}
