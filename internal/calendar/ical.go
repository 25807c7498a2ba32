package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/simplygenda/backend/internal/storage/models"
)

// ExamSummary is the title of the exam-day marker.
const ExamSummary = "Examens"

const productID = "-//SimplyGenda//Week Calendar//FR"

// MaxDocumentSize bounds the bytes read from one iCalendar document.
const MaxDocumentSize = 5 << 20

// Parser reads iCalendar documents into calendar events.
type Parser struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewParser creates a new iCal parser.
func NewParser() *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxBytes: MaxDocumentSize,
	}
}

// FetchAndParse downloads and parses an iCal feed from a URL. At most
// MaxDocumentSize bytes of the body are read.
func (p *Parser) FetchAndParse(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	return p.Parse(io.LimitReader(resp.Body, p.maxBytes))
}

// Parse reads every VEVENT from r, in document order. An event without a
// usable start or end keeps zero times, so callers see it as having no
// positive duration. All-day events span whole local days.
func (p *Parser) Parse(r io.Reader) ([]models.CalendarEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var events []models.CalendarEvent
	for _, ve := range cal.Events() {
		events = append(events, parseVEvent(ve))
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) models.CalendarEvent {
	var out models.CalendarEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyColor); p != nil {
		out.Color = p.Value
	}

	allDay := false
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil && !strings.Contains(p.Value, "T") {
		allDay = true
	}

	var start, end time.Time
	var err error
	if allDay {
		if start, err = ve.GetAllDayStartAt(); err != nil {
			return out
		}
		if end, err = ve.GetAllDayEndAt(); err != nil {
			end = start.AddDate(0, 0, 1)
		}
	} else {
		if start, err = ve.GetStartAt(); err != nil {
			return out
		}
		if end, err = ve.GetEndAt(); err != nil {
			return out
		}
	}

	out.Start = start.In(time.Local)
	out.End = end.In(time.Local)
	return out
}

// WriteWeek serializes a planned week as an iCalendar document with one
// VEVENT per rendered block.
func WriteWeek(w io.Writer, plan [7]DayPlan, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("SimplyGenda")

	stamp := now.UTC()
	for _, day := range plan {
		date := day.Date.Format("20060102")
		switch day.Kind {
		case DayExam:
			ev := cal.AddEvent("exam-" + date + "@simplygenda")
			ev.SetDtStampTime(stamp)
			ev.SetAllDayStartAt(day.Date)
			ev.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))
			ev.SetSummary(ExamSummary)
		case DayNormal:
			for _, o := range day.School {
				ev := cal.AddEvent(o.Entry.ID + "-" + date + "@simplygenda")
				ev.SetDtStampTime(stamp)
				ev.SetStartAt(o.Start)
				ev.SetEndAt(o.End)
				ev.SetSummary(o.Course.Title)
				if o.Course.Teacher != "" {
					ev.SetDescription(o.Course.Teacher)
				}
				if o.Course.Color != "" {
					ev.SetColor(o.Course.Color)
				}
			}
			for _, e := range day.Personal {
				ev := cal.AddEvent(e.ID + "@simplygenda")
				ev.SetDtStampTime(stamp)
				ev.SetStartAt(e.Start)
				ev.SetEndAt(e.End)
				ev.SetSummary(e.Title)
				ev.SetColor(e.Color)
			}
		}
	}

	return cal.SerializeTo(w)
}
