// Package agenda owns the per-user calendar sessions: state, edit dialog and
// the host entry points that mutate them and re-render.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/editflow"
	"github.com/simplygenda/backend/internal/metrics"
	"github.com/simplygenda/backend/internal/render"
	"github.com/simplygenda/backend/internal/storage/models"
	"github.com/simplygenda/backend/internal/websocket"
)

// ErrEventNotFound is returned when editing an event that is not loaded.
var ErrEventNotFound = errors.New("event not found")

// EventStore is the persistence collaborator for personal events.
type EventStore interface {
	LoadEvents(ctx context.Context, userID string) ([]models.PersonalEvent, error)
	editflow.Store
}

// Notifier pushes session changes to the user's connected clients.
type Notifier interface {
	CalendarChanged(userID string, view any)
	Now(userID string, payload websocket.NowPayload)
	Reminder(userID string, payload websocket.ReminderPayload)
	Notification(userID, level, title, message string)
}

// Session is the calendar of one signed-in user. All methods are safe for
// concurrent use; mutations are serialized.
type Session struct {
	mu sync.Mutex

	user   models.User
	state  *calendar.State
	flow   *editflow.Flow
	engine *render.Engine
	store  EventStore

	notifier Notifier
	metrics  *metrics.Metrics
	clock    func() time.Time

	lastTick time.Time
	reminded map[string]bool
}

// User returns the identity and metadata the session was initialized with.
func (s *Session) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetUser replaces the profile metadata shown in the header.
func (s *Session) SetUser(u models.User) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	return s.changed()
}

// Render returns the current view without changing anything.
func (s *Session) Render() (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

// Navigate moves the displayed week by delta weeks.
func (s *Session) Navigate(delta int) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ShiftWeek(delta)
	return s.changed()
}

// Today displays the current week.
func (s *Session) Today() (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetWeek(s.clock())
	return s.changed()
}

// ZoomIn enlarges the grid by one step.
func (s *Session) ZoomIn() (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ZoomIn()
	return s.changed()
}

// ZoomOut shrinks the grid by one step.
func (s *Session) ZoomOut() (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ZoomOut()
	return s.changed()
}

// SetZoom sets the zoom level, clamped to the supported range.
func (s *Session) SetZoom(z int) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetZoom(z)
	return s.changed()
}

// Reload fetches the events again. A failed load empties the collection; the
// failure is logged and not returned.
func (s *Session) Reload(ctx context.Context) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload(ctx)
	return s.changed()
}

// Events returns the loaded personal events.
func (s *Session) Events() []models.PersonalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Events()
}

// EditForm returns the open dialog, if any.
func (s *Session) EditForm() (editflow.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Form()
}

// OpenCreate opens the dialog for a new event.
func (s *Session) OpenCreate() (editflow.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.OpenCreate(s.clock())
}

// OpenEdit opens the dialog for a loaded event.
func (s *Session) OpenEdit(eventID string) (editflow.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.state.Event(eventID)
	if !ok {
		return editflow.Form{}, ErrEventNotFound
	}
	return s.flow.OpenEdit(ev)
}

// Save submits the dialog. On success the events are reloaded, the dialog
// closes and a fresh view is returned.
func (s *Session) Save(ctx context.Context, in editflow.Input) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flow.Save(ctx, in); err != nil {
		s.record(err)
		return render.WeekView{}, err
	}
	s.reload(ctx)
	return s.changed()
}

// Delete soft-deletes the event being edited.
func (s *Session) Delete(ctx context.Context) (render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flow.Delete(ctx); err != nil {
		s.record(err)
		return render.WeekView{}, err
	}
	s.reload(ctx)
	return s.changed()
}

// Cancel closes the dialog without writing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow.Cancel()
}

// BatchCreator is implemented by stores that can insert several events
// atomically.
type BatchCreator interface {
	CreateEvents(ctx context.Context, userID string, fields []models.EventFields) error
}

// Import creates a personal event for every imported calendar event with a
// positive duration, then reloads. Stores implementing BatchCreator import
// all or nothing.
func (s *Session) Import(ctx context.Context, events []models.CalendarEvent) (models.ImportResult, render.WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := models.ImportResult{EventsFound: len(events), ImportedAt: s.clock().UTC()}
	var fields []models.EventFields
	for _, e := range events {
		if !e.End.After(e.Start) {
			result.EventsSkipped++
			continue
		}
		title := e.Summary
		if title == "" {
			title = models.DefaultEventTitle
		}
		color := e.Color
		if color == "" {
			color = models.DefaultEventColor
		}
		fields = append(fields, models.EventFields{Title: title, Start: e.Start, End: e.End, Color: color})
	}

	if err := s.create(ctx, fields, &result); err != nil {
		err = apperr.Collaborator("importing events", err)
		s.record(err)
		s.reload(ctx)
		return result, render.WeekView{}, err
	}

	s.reload(ctx)
	view, err := s.changed()
	if err == nil && s.notifier != nil && result.EventsImported > 0 {
		s.notifier.Notification(s.user.ID, "success", "Import terminé",
			fmt.Sprintf("%d événement(s) importé(s), %d ignoré(s).", result.EventsImported, result.EventsSkipped))
	}
	return result, view, err
}

func (s *Session) create(ctx context.Context, fields []models.EventFields, result *models.ImportResult) error {
	if len(fields) == 0 {
		return nil
	}
	if batch, ok := s.store.(BatchCreator); ok {
		if err := batch.CreateEvents(ctx, s.user.ID, fields); err != nil {
			return err
		}
		result.EventsImported = len(fields)
		return nil
	}
	for _, f := range fields {
		if _, err := s.store.CreateEvent(ctx, s.user.ID, f); err != nil {
			return err
		}
		result.EventsImported++
	}
	return nil
}

// ExportICS writes the displayed week as an iCalendar document.
func (s *Session) ExportICS(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := calendar.PlanWeek(s.engine.Timetable(), s.state)
	if err != nil {
		return err
	}
	return calendar.WriteWeek(w, plan, s.clock())
}

func (s *Session) reload(ctx context.Context) {
	events, err := s.store.LoadEvents(ctx, s.user.ID)
	if err != nil {
		log.Printf("Failed to load events for %s: %v", s.user.ID, err)
		s.metrics.CollaboratorError("load")
		events = nil
	}
	s.state.SetEvents(events)
}

func (s *Session) render() (render.WeekView, error) {
	view, err := s.engine.Render(s.state, s.profile(), s.clock())
	if err != nil {
		return render.WeekView{}, err
	}
	s.metrics.Rendered()
	return view, nil
}

// changed re-renders after a mutation and pushes the view to the user.
func (s *Session) changed() (render.WeekView, error) {
	view, err := s.render()
	if err != nil {
		return view, err
	}
	if s.notifier != nil {
		s.notifier.CalendarChanged(s.user.ID, view)
	}
	return view, nil
}

func (s *Session) profile() render.Profile {
	return render.Profile{
		Firstname:   s.user.Firstname,
		Lastname:    s.user.Lastname,
		Role:        s.user.Role,
		ClassChoice: s.user.ClassChoice,
		School:      s.user.School,
	}
}

func (s *Session) record(err error) {
	var verr *apperr.ValidationError
	var cerr *apperr.CollaboratorError
	switch {
	case errors.As(err, &verr):
		s.metrics.ValidationFailure(verr.Field)
	case errors.As(err, &cerr):
		s.metrics.CollaboratorError(cerr.Op)
	}
}

// tick pushes the minute update and fires reminders whose time fell in
// (lastTick, now].
func (s *Session) tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.lastTick
	s.lastTick = now

	if s.notifier == nil {
		return
	}

	zoom := s.state.Zoom()
	payload := websocket.NowPayload{Zoom: zoom}
	if off, ok := render.NowOffset(now, zoom); ok {
		payload.NowLine = &off
	}
	if view, err := s.engine.Render(s.state, s.profile(), now); err == nil {
		payload.Status = view.Status
	}
	s.notifier.Now(s.user.ID, payload)

	for _, ev := range s.dueReminders(prev, now) {
		s.notifier.Reminder(s.user.ID, websocket.ReminderPayload{
			EventID:         ev.ID,
			Title:           ev.Title,
			Start:           ev.Start,
			ReminderMinutes: ev.ReminderMinutes,
		})
		s.metrics.ReminderSent()
	}
}

func (s *Session) dueReminders(prev, now time.Time) []models.PersonalEvent {
	var due []models.PersonalEvent
	for _, ev := range s.state.Events() {
		if ev.ReminderMinutes <= 0 {
			continue
		}
		at := ev.Start.Add(-time.Duration(ev.ReminderMinutes) * time.Minute)
		if !at.After(prev) || at.After(now) {
			continue
		}
		key := ev.ID + "@" + ev.Start.UTC().Format(time.RFC3339)
		if s.reminded[key] {
			continue
		}
		s.reminded[key] = true
		due = append(due, ev)
	}
	return due
}
