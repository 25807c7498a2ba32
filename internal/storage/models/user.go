package models

import (
	"time"
)

// User roles.
const (
	RoleStudent = "student"
	RolePrivate = "private"
)

// ClassCustom is the class choice that never appears in the app title.
const ClassCustom = "custom"

// User is an account of the auth collaborator together with its profile
// metadata.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Role         string    `json:"role"`
	ClassChoice  string    `json:"class_choice"`
	School       string    `json:"school"`
	Birthdate    string    `json:"birthdate"`
	Address      string    `json:"address"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsStudent reports whether the user has the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// Session is a bearer token issued at sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Firstname   *string `json:"firstname,omitempty"`
	Lastname    *string `json:"lastname,omitempty"`
	Birthdate   *string `json:"birthdate,omitempty"`
	Address     *string `json:"address,omitempty"`
	ClassChoice *string `json:"class_choice,omitempty"`
	School      *string `json:"school,omitempty"`
}
