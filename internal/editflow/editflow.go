// Package editflow implements the create/edit dialog for personal events as
// a small state machine: closed, open for creation, open for editing.
package editflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage/models"
)

// Flow errors.
var (
	ErrAlreadyOpen = errors.New("edit dialog already open")
	ErrNotOpen     = errors.New("edit dialog not open")
	ErrNotEditing  = errors.New("delete is only available when editing an event")
)

// EndBeforeStartMessage is shown when the end is not after the start.
const EndBeforeStartMessage = "La fin doit être après le début."

// Mode is the state of the flow.
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Store is the part of the persistence collaborator the flow writes to.
type Store interface {
	CreateEvent(ctx context.Context, userID string, f models.EventFields) (string, error)
	UpdateEvent(ctx context.Context, userID, id string, f models.EventFields) error
	SoftDeleteEvent(ctx context.Context, userID, id string) error
}

// Form is the pre-filled content of the dialog.
type Form struct {
	Mode            Mode      `json:"mode"`
	EventID         string    `json:"event_id,omitempty"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Color           string    `json:"color"`
	ReminderMinutes int       `json:"reminder_minutes"`
	CanDelete       bool      `json:"can_delete"`
}

// Input is what the user submits.
type Input struct {
	Title           string
	Start           time.Time
	End             time.Time
	Color           string
	ReminderMinutes int
}

// Flow is the edit dialog of one user session. It is not safe for concurrent
// use; callers serialize access.
type Flow struct {
	store  Store
	userID string

	mode    Mode
	eventID string
	form    Form
}

// New creates a closed flow writing to store on behalf of userID.
func New(store Store, userID string) *Flow {
	return &Flow{store: store, userID: userID, mode: ModeClosed}
}

// Mode returns the current state.
func (f *Flow) Mode() Mode {
	return f.mode
}

// Form returns the dialog content; ok is false when the flow is closed.
func (f *Flow) Form() (Form, bool) {
	if f.mode == ModeClosed {
		return Form{Mode: ModeClosed}, false
	}
	return f.form, true
}

// OpenCreate opens the dialog for a new event starting at the next full hour
// after now and lasting one hour.
func (f *Flow) OpenCreate(now time.Time) (Form, error) {
	if f.mode != ModeClosed {
		return Form{}, ErrAlreadyOpen
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())

	f.mode = ModeCreate
	f.eventID = ""
	f.form = Form{
		Mode:            ModeCreate,
		Start:           start,
		End:             start.Add(time.Hour),
		Color:           models.DefaultEventColor,
		ReminderMinutes: models.DefaultReminderMinutes,
	}
	return f.form, nil
}

// OpenEdit opens the dialog pre-filled from ev with deletion enabled.
func (f *Flow) OpenEdit(ev models.PersonalEvent) (Form, error) {
	if f.mode != ModeClosed {
		return Form{}, ErrAlreadyOpen
	}

	color := ev.Color
	if color == "" {
		color = models.DefaultEventColor
	}

	f.mode = ModeEdit
	f.eventID = ev.ID
	f.form = Form{
		Mode:            ModeEdit,
		EventID:         ev.ID,
		Title:           ev.Title,
		Start:           ev.Start,
		End:             ev.End,
		Color:           color,
		ReminderMinutes: ev.ReminderMinutes,
		CanDelete:       true,
	}
	return f.form, nil
}

// Save validates in and writes it through the store. Validation and store
// failures leave the dialog open; success closes it.
func (f *Flow) Save(ctx context.Context, in Input) error {
	if f.mode == ModeClosed {
		return ErrNotOpen
	}

	fields, err := validate(in)
	if err != nil {
		return err
	}

	if f.mode == ModeCreate {
		if _, err := f.store.CreateEvent(ctx, f.userID, fields); err != nil {
			return apperr.Collaborator("creating event", err)
		}
	} else {
		if err := f.store.UpdateEvent(ctx, f.userID, f.eventID, fields); err != nil {
			return apperr.Collaborator("updating event", err)
		}
	}

	f.close()
	return nil
}

// Delete soft-deletes the edited event. It is only available in edit mode.
func (f *Flow) Delete(ctx context.Context) error {
	switch f.mode {
	case ModeClosed:
		return ErrNotOpen
	case ModeCreate:
		return ErrNotEditing
	}

	if err := f.store.SoftDeleteEvent(ctx, f.userID, f.eventID); err != nil {
		return apperr.Collaborator("deleting event", err)
	}

	f.close()
	return nil
}

// Cancel closes the dialog without writing anything.
func (f *Flow) Cancel() {
	f.close()
}

func (f *Flow) close() {
	f.mode = ModeClosed
	f.eventID = ""
	f.form = Form{}
}

func validate(in Input) (models.EventFields, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = models.DefaultEventTitle
	}
	if in.Start.IsZero() {
		return models.EventFields{}, apperr.Invalid("start", "Le début est requis.")
	}
	if in.End.IsZero() {
		return models.EventFields{}, apperr.Invalid("end", "La fin est requise.")
	}
	if !in.End.After(in.Start) {
		return models.EventFields{}, apperr.Invalid("end", EndBeforeStartMessage)
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultEventColor
	}
	reminder := in.ReminderMinutes
	if reminder < 0 {
		reminder = 0
	}

	return models.EventFields{
		Title:           title,
		Start:           in.Start,
		End:             in.End,
		Color:           color,
		ReminderMinutes: reminder,
	}, nil
}
