package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simplygenda/backend/internal/storage/models"
)

// ErrEmailTaken is returned when signing up with an e-mail already in use.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, password_hash, firstname, lastname, role, class_choice,
	school, birthdate, address, avatar_url, created_at, updated_at`

// UserRepository provides data access for accounts and their profiles.
type UserRepository struct {
	BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new user. E-mail addresses are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	existing, err := r.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	u.ID = GenerateID()
	u.CreatedAt = r.Now()
	u.UpdatedAt = u.CreatedAt

	_, err = r.DB().Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.ID, u.Email, u.PasswordHash, u.Firstname, u.Lastname, u.Role, u.ClassChoice,
		u.School, u.Birthdate, u.Address, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. It returns nil when no user matches.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by e-mail address. It returns nil when no user
// matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(r.DB().QueryRow(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname, &u.Role, &u.ClassChoice,
		&u.School, &u.Birthdate, &u.Address, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromDB(u.CreatedAt)
	u.UpdatedAt = fromDB(u.UpdatedAt)
	return u, nil
}

// UpdateProfile applies the non-nil fields of upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	add("firstname", upd.Firstname)
	add("lastname", upd.Lastname)
	add("birthdate", upd.Birthdate)
	add("address", upd.Address)
	add("class_choice", upd.ClassChoice)
	add("school", upd.School)

	sets = append(sets, "updated_at = ?")
	args = append(args, r.Now(), id)

	result, err := r.DB().Exec(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("user %s: %w", id, err)
	}
	return nil
}

// SetAvatarURL stores the public URL of the user's avatar.
func (r *UserRepository) SetAvatarURL(ctx context.Context, id, url string) error {
	result, err := r.DB().Exec(ctx, `
		UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?
	`, url, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("user %s: %w", id, err)
	}
	return nil
}

// SessionRepository stores bearer tokens issued at sign-in.
type SessionRepository struct {
	BaseRepository
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create issues a new token for the user valid for ttl.
func (r *SessionRepository) Create(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	s := &models.Session{
		Token:     GenerateID(),
		UserID:    userID,
		CreatedAt: r.Now(),
	}
	s.ExpiresAt = s.CreatedAt.Add(ttl)

	_, err := r.DB().Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)
	`, s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	return s, nil
}

// Resolve returns the user owning a valid token, or nil when the token is
// unknown or expired.
func (r *SessionRepository) Resolve(ctx context.Context, token string) (*models.User, error) {
	sess := models.Session{Token: token}
	err := r.DB().QueryRow(ctx, `
		SELECT user_id, created_at, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	if sess.Expired(r.Now()) {
		return nil, nil
	}

	u, err := scanUser(r.DB().QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", sess.UserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session user: %w", err)
	}
	return u, nil
}

// Delete revokes a token. Unknown tokens are ignored.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.DB().Exec(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes every token that expired before now and returns how
// many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.DB().Exec(ctx, "DELETE FROM sessions WHERE expires_at <= ?", r.Now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected()
}
