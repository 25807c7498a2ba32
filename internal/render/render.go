// Package render turns a calendar state into the absolute-positioned layout
// of the week grid.
package render

import (
	"fmt"
	"time"

	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/grid"
	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/timetable"
)

// Display defaults.
const (
	AppName            = "MySimplyGenda"
	DefaultSchoolColor = "#3f51b5"
	PrivateClassLabel  = "Privé"
	NoCurrentLabel     = "—"
	statusSeparator    = " • "
)

// BlockKind distinguishes the three kinds of positioned blocks.
type BlockKind string

const (
	BlockSchool   BlockKind = "school"
	BlockPersonal BlockKind = "personal"
	BlockExam     BlockKind = "exam"
)

// Profile is the user metadata shown in the header.
type Profile struct {
	Firstname   string
	Lastname    string
	Role        string
	ClassChoice string
	School      string
}

// Header is the top bar of the week view.
type Header struct {
	Title      string `json:"title"`
	ClassLabel string `json:"class_label"`
	UserName   string `json:"user_name"`
}

// Block is one absolute-positioned rectangle in a day column.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Top     float64   `json:"top"`
	Height  float64   `json:"height"`
	Color   string    `json:"color,omitempty"`
	Label   string    `json:"label"`
	Title   string    `json:"title"`
	Teacher string    `json:"teacher,omitempty"`
	Start   string    `json:"start,omitempty"`
	End     string    `json:"end,omitempty"`
	EventID string    `json:"event_id,omitempty"`
	EntryID string    `json:"entry_id,omitempty"`
}

// DayColumn is one day of the grid.
type DayColumn struct {
	Date    string           `json:"date"`
	Header  string           `json:"header"`
	Kind    calendar.DayKind `json:"kind"`
	Today   bool             `json:"today"`
	Classes []string         `json:"classes"`
	Blocks  []Block          `json:"blocks"`
	NowLine *float64         `json:"now_line,omitempty"`
}

// WeekView is the complete rendered week.
type WeekView struct {
	Header       Header       `json:"header"`
	WeekLabel    string       `json:"week_label"`
	WeekStart    string       `json:"week_start"`
	Zoom         int          `json:"zoom"`
	ColumnHeight float64      `json:"column_height"`
	Ruler        []string     `json:"ruler"`
	Days         [7]DayColumn `json:"days"`
	Status       string       `json:"status"`
}

// Engine renders week views against a static timetable.
type Engine struct {
	tt *timetable.Timetable
}

// NewEngine creates a render engine.
func NewEngine(tt *timetable.Timetable) *Engine {
	return &Engine{tt: tt}
}

// Timetable returns the static configuration the engine renders.
func (e *Engine) Timetable() *timetable.Timetable {
	return e.tt
}

// Render rebuilds the full view from state at clock now. It reads state
// without modifying it; equal inputs yield equal views.
func (e *Engine) Render(s *calendar.State, p Profile, now time.Time) (WeekView, error) {
	plan, err := calendar.PlanWeek(e.tt, s)
	if err != nil {
		return WeekView{}, fmt.Errorf("planning week: %w", err)
	}

	zoom := s.Zoom()
	colHeight := grid.ColumnHeight(zoom)
	dates := s.CurrentWeekDates()

	view := WeekView{
		Header:       header(p),
		WeekLabel:    weekLabel(dates[0], dates[6]),
		WeekStart:    dates[0].Format(timetable.DateLayout),
		Zoom:         zoom,
		ColumnHeight: colHeight,
		Ruler:        grid.HourLabels(),
		Status:       e.status(s, now),
	}

	var nowLine *float64
	if off, ok := NowOffset(now, zoom); ok {
		nowLine = &off
	}

	today := now.Format(timetable.DateLayout)
	for i, day := range plan {
		col := DayColumn{
			Date:    day.Date.Format(timetable.DateLayout),
			Header:  dayHeader(day.Date),
			Kind:    day.Kind,
			Blocks:  []Block{},
			NowLine: nowLine,
		}
		col.Today = col.Date == today
		col.Classes = classes(col)

		switch day.Kind {
		case calendar.DayExam:
			col.Blocks = append(col.Blocks, Block{
				Kind:   BlockExam,
				Top:    0,
				Height: colHeight,
				Label:  calendar.ExamSummary,
				Title:  calendar.ExamSummary,
			})
		case calendar.DayNormal:
			for _, o := range day.School {
				col.Blocks = append(col.Blocks, schoolBlock(o, zoom))
			}
			for _, ev := range day.Personal {
				col.Blocks = append(col.Blocks, personalBlock(ev, zoom))
			}
		}

		view.Days[i] = col
	}

	return view, nil
}

func header(p Profile) Header {
	title := AppName
	if p.ClassChoice != "" && p.ClassChoice != models.ClassCustom {
		title += " – " + p.ClassChoice
	}
	if p.School != "" {
		title += " – " + p.School
	}

	class := PrivateClassLabel
	if p.Role == models.RoleStudent {
		class = p.ClassChoice
	}

	name := p.Firstname
	if p.Lastname != "" {
		if name != "" {
			name += " "
		}
		name += p.Lastname
	}

	return Header{Title: title, ClassLabel: class, UserName: name}
}

func classes(col DayColumn) []string {
	out := []string{"day"}
	if col.Today {
		out = append(out, "today")
	}
	if col.Kind != calendar.DayNormal {
		out = append(out, string(col.Kind))
	}
	return out
}

func schoolBlock(o calendar.Occurrence, zoom int) Block {
	color := o.Course.Color
	if color == "" {
		color = DefaultSchoolColor
	}
	label := o.Course.Title
	if o.Course.Teacher != "" {
		label += " – " + o.Course.Teacher
	}
	return Block{
		Kind:    BlockSchool,
		Top:     grid.VerticalOffset(o.Start, zoom),
		Height:  grid.BlockHeight(o.Start, o.End, zoom),
		Color:   color,
		Label:   label,
		Title:   o.Course.Title,
		Teacher: o.Course.Teacher,
		Start:   o.Entry.Start,
		End:     o.Entry.End,
		EntryID: o.Entry.ID,
	}
}

func personalBlock(ev models.PersonalEvent, zoom int) Block {
	color := ev.Color
	if color == "" {
		color = models.DefaultEventColor
	}
	return Block{
		Kind:    BlockPersonal,
		Top:     grid.VerticalOffset(ev.Start, zoom),
		Height:  grid.BlockHeight(ev.Start, ev.End, zoom),
		Color:   color,
		Label:   ev.Title,
		Title:   ev.Title,
		Start:   ev.Start.Format(timetable.ClockLayout),
		End:     ev.End.Format(timetable.ClockLayout),
		EventID: ev.ID,
	}
}

// status builds "<weekday dd.mm.yyyy> • HH:MM • <current>". School entries of
// today's weekday win over personal events.
func (e *Engine) status(s *calendar.State, now time.Time) string {
	current := NoCurrentLabel
	if title, ok := e.CurrentSchool(now); ok {
		current = title
	} else if ev, ok := s.EventAt(now); ok {
		current = ev.Title
	}
	return statusDate(now) + statusSeparator + now.Format(timetable.ClockLayout) + statusSeparator + current
}

// CurrentSchool returns the title of the first schedule entry of now's
// weekday whose time span contains now.
func (e *Engine) CurrentSchool(now time.Time) (string, bool) {
	for _, entry := range e.tt.EntriesFor(timetable.ISOWeekday(now.Weekday())) {
		start, err := timetable.At(now, entry.Start)
		if err != nil {
			continue
		}
		end, err := timetable.At(now, entry.End)
		if err != nil {
			continue
		}
		if !now.Before(start) && now.Before(end) {
			return e.tt.Course(entry.CourseID).Title, true
		}
	}
	return "", false
}

// NowOffset returns the now-line offset at zoom, and whether it is visible.
func NowOffset(now time.Time, zoom int) (float64, bool) {
	off := grid.VerticalOffset(now, zoom)
	return off, grid.InWindow(off, zoom)
}
