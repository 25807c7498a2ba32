package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simplygenda/backend/internal/storage/models"
)

// EventRepository provides data access for personal events.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// LoadEvents returns the user's events that are not soft-deleted, ordered by
// start time. Missing colours load as the default colour and missing
// reminders as zero.
func (r *EventRepository) LoadEvents(ctx context.Context, userID string) ([]models.PersonalEvent, error) {
	rows, err := r.DB().Query(ctx, `
		SELECT id, user_id, title, start_at, end_at, color, reminder_minutes
		FROM events
		WHERE user_id = ? AND deleted = FALSE
		ORDER BY start_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []models.PersonalEvent{}
	for rows.Next() {
		var (
			e        models.PersonalEvent
			color    sql.NullString
			reminder sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Start, &e.End, &color, &reminder); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Start = fromDB(e.Start)
		e.End = fromDB(e.End)
		e.Color = color.String
		if e.Color == "" {
			e.Color = models.DefaultEventColor
		}
		e.ReminderMinutes = int(reminder.Int64)
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetEvent retrieves one event of the user, including soft-deleted rows.
func (r *EventRepository) GetEvent(ctx context.Context, userID, id string) (*models.PersonalEvent, error) {
	var (
		e        models.PersonalEvent
		color    sql.NullString
		reminder sql.NullInt64
	)
	err := r.DB().QueryRow(ctx, `
		SELECT id, user_id, title, start_at, end_at, color, reminder_minutes
		FROM events WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&e.ID, &e.UserID, &e.Title, &e.Start, &e.End, &color, &reminder)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	e.Start = fromDB(e.Start)
	e.End = fromDB(e.End)
	e.Color = color.String
	e.ReminderMinutes = int(reminder.Int64)
	return &e, nil
}

const insertEventSQL = `
	INSERT INTO events (
		id, user_id, title, start_at, end_at, color, reminder_minutes, deleted, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateEvent inserts a new event and returns its ID.
func (r *EventRepository) CreateEvent(ctx context.Context, userID string, f models.EventFields) (string, error) {
	return r.insert(ctx, r.DB(), userID, f)
}

// CreateEvents inserts all events in one transaction: either every event is
// stored or none is.
func (r *EventRepository) CreateEvents(ctx context.Context, userID string, fields []models.EventFields) error {
	return r.Transaction(func(tx *sql.Tx) error {
		for _, f := range fields {
			if _, err := r.insert(ctx, tx, userID, f); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EventRepository) insert(ctx context.Context, q Queryable, userID string, f models.EventFields) (string, error) {
	id := GenerateID()
	now := r.Now()

	_, err := q.ExecContext(ctx, r.DB().Rebind(insertEventSQL),
		id, userID, f.Title, toDB(f.Start), toDB(f.End),
		f.Color, f.ReminderMinutes, false, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting event: %w", err)
	}

	return id, nil
}

// UpdateEvent overwrites the editable fields of an existing event.
func (r *EventRepository) UpdateEvent(ctx context.Context, userID, id string, f models.EventFields) error {
	result, err := r.DB().Exec(ctx, `
		UPDATE events SET
			title = ?, start_at = ?, end_at = ?, color = ?, reminder_minutes = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted = FALSE
	`,
		f.Title, toDB(f.Start), toDB(f.End), f.Color, f.ReminderMinutes, r.Now(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	if err := affected(result); err != nil {
		return fmt.Errorf("event %s: %w", id, err)
	}

	return nil
}

// SoftDeleteEvent flags an event as deleted. Deleted events are never loaded.
func (r *EventRepository) SoftDeleteEvent(ctx context.Context, userID, id string) error {
	result, err := r.DB().Exec(ctx, `
		UPDATE events SET deleted = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, true, r.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	if err := affected(result); err != nil {
		return fmt.Errorf("event %s: %w", id, err)
	}

	return nil
}
