package editflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage/models"
)

type stubStore struct {
	created []models.EventFields
	updated map[string]models.EventFields
	deleted []string
	err     error
	calls   int
}

func (s *stubStore) CreateEvent(ctx context.Context, userID string, f models.EventFields) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, f)
	return "new-id", nil
}

func (s *stubStore) UpdateEvent(ctx context.Context, userID, id string, f models.EventFields) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.updated == nil {
		s.updated = make(map[string]models.EventFields)
	}
	s.updated[id] = f
	return nil
}

func (s *stubStore) SoftDeleteEvent(ctx context.Context, userID, id string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func TestOpenCreateDefaults(t *testing.T) {
	f := New(&stubStore{}, "u1")
	form, err := f.OpenCreate(local(2025, 9, 1, 14, 37))
	if err != nil {
		t.Fatal(err)
	}
	if !form.Start.Equal(local(2025, 9, 1, 15, 0)) || !form.End.Equal(local(2025, 9, 1, 16, 0)) {
		t.Errorf("form times = %v–%v", form.Start, form.End)
	}
	if form.Color != "#e91e63" || form.ReminderMinutes != 10 || form.Title != "" || form.CanDelete {
		t.Errorf("form = %+v", form)
	}

	late, _ := New(&stubStore{}, "u1").OpenCreate(local(2025, 9, 1, 23, 10))
	if !late.Start.Equal(local(2025, 9, 2, 0, 0)) {
		t.Errorf("start after 23:10 = %v", late.Start)
	}
}

func TestOpenWhileOpen(t *testing.T) {
	f := New(&stubStore{}, "u1")
	if _, err := f.OpenCreate(time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenEdit(models.PersonalEvent{ID: "x"}); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("OpenEdit() while open error = %v", err)
	}
	if _, err := f.OpenCreate(time.Now()); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("OpenCreate() while open error = %v", err)
	}
}

func TestSaveRejectsEndBeforeStart(t *testing.T) {
	store := &stubStore{}
	f := New(store, "u1")
	f.OpenCreate(local(2025, 9, 1, 8, 0))

	err := f.Save(context.Background(), Input{
		Title: "Test", Start: local(2025, 9, 1, 10, 0), End: local(2025, 9, 1, 9, 0),
	})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Message != EndBeforeStartMessage {
		t.Fatalf("Save() error = %v, want validation error", err)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times on invalid input", store.calls)
	}
	if f.Mode() != ModeCreate {
		t.Errorf("mode = %v, want dialog to stay open", f.Mode())
	}

	if err := f.Save(context.Background(), Input{Start: local(2025, 9, 1, 10, 0), End: local(2025, 9, 1, 10, 0)}); !apperr.IsValidation(err) {
		t.Errorf("equal start/end error = %v", err)
	}
}

func TestSaveCreate(t *testing.T) {
	store := &stubStore{}
	f := New(store, "u1")
	f.OpenCreate(local(2025, 9, 1, 8, 0))

	err := f.Save(context.Background(), Input{
		Title: "   ", Start: local(2025, 9, 1, 10, 0), End: local(2025, 9, 1, 11, 0), ReminderMinutes: 15,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created = %d", len(store.created))
	}
	got := store.created[0]
	if got.Title != "Événement" || got.Color != models.DefaultEventColor || got.ReminderMinutes != 15 {
		t.Errorf("created fields = %+v", got)
	}
	if f.Mode() != ModeClosed {
		t.Errorf("mode after save = %v", f.Mode())
	}
}

func TestSaveEditAndCollaboratorFailure(t *testing.T) {
	store := &stubStore{err: errors.New("network down")}
	f := New(store, "u1")
	ev := models.PersonalEvent{ID: "e1", Title: "Piano", Start: local(2025, 9, 2, 17, 0), End: local(2025, 9, 2, 18, 0)}
	form, err := f.OpenEdit(ev)
	if err != nil {
		t.Fatal(err)
	}
	if form.Color != models.DefaultEventColor || !form.CanDelete || form.EventID != "e1" {
		t.Errorf("edit form = %+v", form)
	}

	in := Input{Title: "Piano", Start: ev.Start, End: ev.End.Add(time.Hour), Color: "#000000"}
	if err := f.Save(context.Background(), in); !apperr.IsCollaborator(err) {
		t.Fatalf("Save() error = %v, want collaborator error", err)
	}
	if f.Mode() != ModeEdit {
		t.Fatalf("dialog closed after failed save")
	}

	store.err = nil
	if err := f.Save(context.Background(), in); err != nil {
		t.Fatalf("retry Save() error = %v", err)
	}
	if got := store.updated["e1"]; got.Color != "#000000" || !got.End.Equal(ev.End.Add(time.Hour)) {
		t.Errorf("updated fields = %+v", got)
	}
}

func TestDelete(t *testing.T) {
	store := &stubStore{}
	f := New(store, "u1")

	if err := f.Delete(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Delete() closed error = %v", err)
	}
	f.OpenCreate(time.Now())
	if err := f.Delete(context.Background()); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Delete() in create mode error = %v", err)
	}
	f.Cancel()

	f.OpenEdit(models.PersonalEvent{ID: "e9"})
	store.err = errors.New("boom")
	if err := f.Delete(context.Background()); !apperr.IsCollaborator(err) || f.Mode() != ModeEdit {
		t.Errorf("failed Delete() = %v, mode %v", err, f.Mode())
	}
	store.err = nil
	if err := f.Delete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "e9" || f.Mode() != ModeClosed {
		t.Errorf("deleted = %v, mode %v", store.deleted, f.Mode())
	}
}

func TestCancelMakesNoCall(t *testing.T) {
	store := &stubStore{}
	f := New(store, "u1")
	f.OpenCreate(time.Now())
	f.Cancel()
	if store.calls != 0 || f.Mode() != ModeClosed {
		t.Errorf("calls = %d, mode = %v", store.calls, f.Mode())
	}
	if err := f.Save(context.Background(), Input{}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Save() after cancel error = %v", err)
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2025-09-01T10:30")
	if err != nil || !got.Equal(local(2025, 9, 1, 10, 30)) {
		t.Errorf("ParseTime(local) = %v, %v", got, err)
	}
	got, err = ParseTime("2025-09-01T08:30:00Z")
	if err != nil || !got.Equal(time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("ParseTime(rfc3339) = %v, %v", got, err)
	}
	if z, err := ParseTime(""); err != nil || !z.IsZero() {
		t.Errorf("ParseTime(empty) = %v, %v", z, err)
	}
	if _, err := ParseTime("demain"); err == nil {
		t.Error("expected error")
	}
	if s := FormatLocal(local(2025, 9, 1, 10, 30)); s != "2025-09-01T10:30" {
		t.Errorf("FormatLocal() = %q", s)
	}
}
