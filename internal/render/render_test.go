package render

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

var student = Profile{Firstname: "Léa", Lastname: "Muster", Role: models.RoleStudent, ClassChoice: "CFC-1", School: "EPC"}

func renderAt(t *testing.T, s *calendar.State, now time.Time) WeekView {
	t.Helper()
	view, err := NewEngine(timetable.Default()).Render(s, student, now)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return view
}

func TestSchoolBlockGeometry(t *testing.T) {
	for _, zoom := range []int{15, 32, 60, 100} {
		s := calendar.NewState(local(2025, 9, 1, 7, 0))
		s.SetZoom(zoom)
		view := renderAt(t, s, local(2025, 9, 1, 7, 0))

		mon := view.Days[0]
		if len(mon.Blocks) == 0 {
			t.Fatalf("zoom %d: Monday has no blocks", zoom)
		}
		b := mon.Blocks[0]
		if b.Title != "DCO B" || b.Kind != BlockSchool {
			t.Fatalf("first block = %+v", b)
		}
		if want := float64(zoom) / 3; math.Abs(b.Top-want) > 1e-9 {
			t.Errorf("zoom %d: top = %v, want %v", zoom, b.Top, want)
		}
		if want := 95.0 / 60 * float64(zoom); math.Abs(b.Height-want) > 1e-9 {
			t.Errorf("zoom %d: height = %v, want %v", zoom, b.Height, want)
		}
		if b.Color != "#F06292" || b.Label != "DCO B – Mme Dupont" {
			t.Errorf("block styling = %q / %q", b.Color, b.Label)
		}
	}
}

func TestExamDayShowsOnlyMarker(t *testing.T) {
	s := calendar.NewState(local(2025, 12, 17, 9, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "e", Title: "Révision", Start: local(2025, 12, 17, 13, 0), End: local(2025, 12, 17, 14, 0)},
	})
	view := renderAt(t, s, local(2025, 12, 17, 9, 0))

	wed := view.Days[2]
	if wed.Kind != calendar.DayExam {
		t.Fatalf("kind = %v, want exam", wed.Kind)
	}
	if len(wed.Blocks) != 1 {
		t.Fatalf("exam day has %d blocks, want 1", len(wed.Blocks))
	}
	marker := wed.Blocks[0]
	if marker.Kind != BlockExam || marker.Top != 0 || marker.Height != view.ColumnHeight || marker.Label != "Examens" {
		t.Errorf("marker = %+v", marker)
	}
}

func TestHolidayColumnIsBlank(t *testing.T) {
	s := calendar.NewState(local(2025, 10, 20, 9, 0))
	view := renderAt(t, s, local(2025, 10, 20, 9, 0))

	mon := view.Days[0]
	if mon.Kind != calendar.DayHoliday || len(mon.Blocks) != 0 {
		t.Errorf("holiday column = %+v", mon)
	}
	found := false
	for _, c := range mon.Classes {
		if c == "holiday" {
			found = true
		}
	}
	if !found {
		t.Errorf("classes = %v, want holiday", mon.Classes)
	}
}

func TestPersonalBlocks(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 1, 9, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "p1", Title: "Piano", Start: local(2025, 9, 2, 17, 0), End: local(2025, 9, 2, 18, 30), Color: "#00ff00"},
		{ID: "p2", Title: "Nuit", Start: local(2025, 9, 3, 20, 0), End: local(2025, 9, 3, 21, 0)},
	})
	view := renderAt(t, s, local(2025, 9, 1, 9, 0))

	tue := view.Days[1]
	last := tue.Blocks[len(tue.Blocks)-1]
	if last.Kind != BlockPersonal || last.EventID != "p1" || last.Color != "#00ff00" {
		t.Fatalf("personal block = %+v", last)
	}
	if last.Top != 9*32 || last.Height != 1.5*32 {
		t.Errorf("geometry = %v/%v", last.Top, last.Height)
	}

	wed := view.Days[2]
	night := wed.Blocks[len(wed.Blocks)-1]
	if night.Color != models.DefaultEventColor {
		t.Errorf("default colour = %q", night.Color)
	}
	if night.Top <= view.ColumnHeight {
		t.Errorf("out-of-window event was clipped: top %v", night.Top)
	}
}

func TestNowLine(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 1, 9, 0))

	view := renderAt(t, s, local(2025, 9, 3, 10, 30))
	for i, d := range view.Days {
		if d.NowLine == nil || *d.NowLine != 2.5*32 {
			t.Errorf("day %d now line = %v", i, d.NowLine)
		}
	}
	if !view.Days[2].Today || view.Days[1].Today {
		t.Error("today flag on wrong column")
	}

	view = renderAt(t, s, local(2025, 9, 3, 19, 0))
	for i, d := range view.Days {
		if d.NowLine != nil {
			t.Errorf("day %d has now line outside window", i)
		}
	}
}

func TestStatusLine(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 1, 9, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "p", Title: "Dentiste", Start: local(2025, 9, 1, 9, 0), End: local(2025, 9, 1, 10, 0)},
		{ID: "q", Title: "Soir", Start: local(2025, 9, 1, 19, 0), End: local(2025, 9, 1, 20, 0)},
	})

	tests := []struct {
		now  time.Time
		want string
	}{
		{local(2025, 9, 1, 9, 15), "lundi 01.09.2025 • 09:15 • DCO B"},
		{local(2025, 9, 1, 19, 30), "lundi 01.09.2025 • 19:30 • Soir"},
		{local(2025, 9, 1, 12, 30), "lundi 01.09.2025 • 12:30 • —"},
		{local(2025, 9, 6, 10, 0), "samedi 06.09.2025 • 10:00 • —"},
	}
	for _, tc := range tests {
		if got := renderAt(t, s, tc.now).Status; got != tc.want {
			t.Errorf("status at %v = %q, want %q", tc.now, got, tc.want)
		}
	}
}

func TestHeaderAndLabels(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 3, 9, 0))
	view := renderAt(t, s, local(2025, 9, 3, 9, 0))

	if view.Header.Title != "MySimplyGenda – CFC-1 – EPC" {
		t.Errorf("title = %q", view.Header.Title)
	}
	if view.Header.ClassLabel != "CFC-1" || view.Header.UserName != "Léa Muster" {
		t.Errorf("header = %+v", view.Header)
	}
	if view.WeekLabel != "1 sept. 2025 – 7 sept. 2025" {
		t.Errorf("week label = %q", view.WeekLabel)
	}
	if view.Days[0].Header != "lundi 1 sept." {
		t.Errorf("day header = %q", view.Days[0].Header)
	}
	if len(view.Ruler) != 11 {
		t.Errorf("ruler has %d ticks", len(view.Ruler))
	}

	private := header(Profile{Role: models.RolePrivate, ClassChoice: models.ClassCustom})
	if private.Title != AppName || private.ClassLabel != PrivateClassLabel {
		t.Errorf("private header = %+v", private)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 1, 9, 0))
	s.SetEvents([]models.PersonalEvent{
		{ID: "p", Title: "Piano", Start: local(2025, 9, 2, 17, 0), End: local(2025, 9, 2, 18, 0)},
	})
	now := local(2025, 9, 2, 10, 0)

	first := renderAt(t, s, now)
	second := renderAt(t, s, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("two renders of the same state differ")
	}
	if len(s.Events()) != 1 || s.Zoom() != 32 {
		t.Error("render mutated state")
	}
}

func TestWriteHTML(t *testing.T) {
	s := calendar.NewState(local(2025, 9, 1, 9, 0))
	view := renderAt(t, s, local(2025, 9, 1, 9, 0))

	var buf bytes.Buffer
	if err := WriteHTML(&buf, view); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`data-ready="true"`, "DCO B – Mme Dupont", "lundi 1 sept.", "08:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}
