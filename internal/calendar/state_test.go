package calendar

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/simplygenda/backend/internal/grid"
	"github.com/simplygenda/backend/internal/storage/models"
)

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{local(2025, 9, 1, 10, 0), local(2025, 9, 1, 0, 0)},
		{local(2025, 9, 3, 23, 59), local(2025, 9, 1, 0, 0)},
		{local(2025, 9, 7, 12, 0), local(2025, 9, 1, 0, 0)},
		{local(2026, 1, 1, 8, 0), local(2025, 12, 29, 0, 0)},
	}
	for _, tt := range tests {
		if got := StartOfWeek(tt.in); !got.Equal(tt.want) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCurrentWeekDates(t *testing.T) {
	s := NewState(local(2025, 10, 30, 15, 0))
	days := s.CurrentWeekDates()

	if days[0].Weekday() != time.Monday {
		t.Fatalf("first day = %v, want Monday", days[0].Weekday())
	}
	for i := 1; i < len(days); i++ {
		y, m, d := days[i-1].AddDate(0, 0, 1).Date()
		gy, gm, gd := days[i].Date()
		if y != gy || m != gm || d != gd {
			t.Errorf("day %d = %v, not consecutive", i, days[i])
		}
		if days[i].Hour() != 0 || days[i].Minute() != 0 {
			t.Errorf("day %d not at midnight: %v", i, days[i])
		}
	}
}

func TestNavigation(t *testing.T) {
	s := NewState(local(2025, 9, 3, 9, 0))
	s.ShiftWeek(1)
	if got := s.Anchor(); !got.Equal(local(2025, 9, 8, 0, 0)) {
		t.Errorf("after next: %v", got)
	}
	s.ShiftWeek(-2)
	if got := s.Anchor(); !got.Equal(local(2025, 8, 25, 0, 0)) {
		t.Errorf("after prev twice: %v", got)
	}
	s.SetWeek(local(2025, 12, 17, 11, 0))
	if got := s.Anchor(); !got.Equal(local(2025, 12, 15, 0, 0)) {
		t.Errorf("SetWeek: %v", got)
	}
}

func TestZoomAlwaysInRange(t *testing.T) {
	s := NewState(time.Now())
	if s.Zoom() != grid.DefaultZoom {
		t.Fatalf("initial zoom = %d", s.Zoom())
	}
	for _, z := range []int{-5, 0, 14, 50, 101, 10000} {
		s.SetZoom(z)
		if s.Zoom() < grid.MinZoom || s.Zoom() > grid.MaxZoom {
			t.Errorf("SetZoom(%d) stored %d", z, s.Zoom())
		}
	}
	s.SetZoom(grid.MaxZoom)
	s.ZoomIn()
	if s.Zoom() != grid.MaxZoom {
		t.Errorf("ZoomIn at max = %d", s.Zoom())
	}
	s.SetZoom(grid.MinZoom)
	s.ZoomOut()
	if s.Zoom() != grid.MinZoom {
		t.Errorf("ZoomOut at min = %d", s.Zoom())
	}
}

func TestEventsOnAndEventAt(t *testing.T) {
	s := NewState(local(2025, 9, 1, 8, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "late", Start: local(2025, 9, 2, 18, 0), End: local(2025, 9, 2, 20, 0)},
		{ID: "a", Start: local(2025, 9, 2, 10, 0), End: local(2025, 9, 2, 12, 0)},
		{ID: "b", Start: local(2025, 9, 2, 10, 0), End: local(2025, 9, 2, 12, 0)},
		{ID: "c", Start: local(2025, 9, 2, 11, 0), End: local(2025, 9, 2, 11, 30)},
		{ID: "reversed", Start: local(2025, 9, 3, 10, 0), End: local(2025, 9, 3, 9, 0)},
	})

	on := s.EventsOn(local(2025, 9, 2, 0, 0))
	if len(on) != 4 || on[0].ID != "late" || on[1].ID != "a" {
		t.Errorf("EventsOn() = %+v", on)
	}
	if got := s.EventsOn(local(2025, 9, 3, 0, 0)); len(got) != 1 || got[0].ID != "reversed" {
		t.Errorf("reversed event not listed on its start day: %+v", got)
	}

	ev, ok := s.EventAt(local(2025, 9, 2, 11, 15))
	if !ok || ev.ID != "a" {
		t.Errorf("EventAt(11:15) = %v, %v, want a", ev.ID, ok)
	}
	if _, ok := s.EventAt(local(2025, 9, 2, 12, 0)); ok {
		t.Error("EventAt(end) should be exclusive")
	}
	if _, ok := s.EventAt(local(2025, 9, 3, 9, 30)); ok {
		t.Error("reversed event reported as current")
	}

	between := s.EventsBetween(local(2025, 9, 2, 17, 0), local(2025, 9, 2, 19, 0))
	if len(between) != 1 || between[0].ID != "late" {
		t.Errorf("EventsBetween() = %+v", between)
	}
}

func TestSetEventsCopies(t *testing.T) {
	events := []models.PersonalEvent{{ID: "x", Start: local(2025, 9, 1, 9, 0), End: local(2025, 9, 1, 10, 0)}}
	s := NewState(local(2025, 9, 1, 9, 0))
	s.SetEvents(events)
	events[0].ID = "mutated"

	if got := s.Events(); got[0].ID != "x" {
		t.Errorf("state shares caller slice: %+v", got)
	}
	if _, ok := s.Event("x"); !ok {
		t.Error("Event(x) not found")
	}
}

func TestEmptyEventIsListedButNotIndexed(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	at := local(2025, 9, 2, 11, 0)
	s := NewState(at)
	s.SetEvents([]models.PersonalEvent{{ID: "empty", Start: at, End: at}})

	if logs.Len() != 0 {
		t.Errorf("SetEvents() logged %q", logs.String())
	}
	if got := s.EventsOn(at); len(got) != 1 {
		t.Errorf("EventsOn() = %+v", got)
	}
	if _, ok := s.EventAt(at); ok {
		t.Error("empty event reported as current")
	}
}
