package calendar

import (
	"testing"
	"time"

	"github.com/simplygenda/backend/internal/timetable"
)

func TestWeekOccurrences(t *testing.T) {
	tt := timetable.Default()
	occ, err := WeekOccurrences(tt, local(2025, 9, 3, 12, 0))
	if err != nil {
		t.Fatalf("WeekOccurrences() error = %v", err)
	}
	if len(occ) != len(tt.Entries) {
		t.Fatalf("got %d occurrences, want %d", len(occ), len(tt.Entries))
	}

	first := occ[0]
	if !first.Start.Equal(local(2025, 9, 1, 8, 20)) || !first.End.Equal(local(2025, 9, 1, 9, 55)) {
		t.Errorf("first occurrence = %v–%v", first.Start, first.End)
	}

	last := occ[len(occ)-1]
	if last.Start.Weekday() != time.Friday || last.Course.Title != "DCO D" {
		t.Errorf("last occurrence = %+v", last)
	}
}

func TestWeekOccurrencesAcrossDST(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// Clocks go back on Sunday 2025-10-26; the following week keeps 08:20.
	monday := time.Date(2025, 10, 27, 0, 0, 0, 0, zurich)
	occ, err := WeekOccurrences(timetable.Default(), monday)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range occ {
		if o.Entry.Start == "08:20" && (o.Start.Hour() != 8 || o.Start.Minute() != 20) {
			t.Errorf("%s starts at %v", o.Entry.ID, o.Start)
		}
	}
}

func TestWeekOccurrencesRejectsBadEntries(t *testing.T) {
	tt := &timetable.Timetable{Entries: []timetable.Entry{{ID: "x", Weekday: 9, Start: "08:00", End: "09:00"}}}
	if _, err := WeekOccurrences(tt, local(2025, 9, 1, 0, 0)); err == nil {
		t.Error("expected error for invalid weekday")
	}
}
