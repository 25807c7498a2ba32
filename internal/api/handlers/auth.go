package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/render"
	"github.com/simplygenda/backend/internal/storage"
	"github.com/simplygenda/backend/internal/storage/models"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Role        string `json:"role"`
	ClassChoice string `json:"class_choice"`
	School      string `json:"school"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the first render of the week.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.User    `json:"user"`
	View      render.WeekView `json:"view"`
}

// AuthDeps groups the collaborators of the auth handlers.
type AuthDeps struct {
	Users      *storage.UserRepository
	Sessions   *storage.SessionRepository
	Registry   *agenda.Registry
	SessionTTL time.Duration
}

func (req *SignupRequest) validate() error {
	req.Email = strings.TrimSpace(req.Email)
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)

	switch {
	case req.Firstname == "":
		return apperr.Invalid("firstname", "Le prénom est requis.")
	case req.Lastname == "":
		return apperr.Invalid("lastname", "Le nom est requis.")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return apperr.Invalid("email", "Adresse e-mail invalide.")
	case len(req.Password) < MinPasswordLength:
		return apperr.Invalid("password", "Le mot de passe doit contenir au moins 6 caractères.")
	}

	if req.Role != models.RoleStudent {
		req.Role = models.RolePrivate
		req.ClassChoice = ""
	}
	return nil
}

// Signup creates an account, signs it in and initializes its calendar.
func Signup(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			middleware.WriteAppError(w, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create account")
			return
		}

		user := &models.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			Firstname:    req.Firstname,
			Lastname:     req.Lastname,
			Role:         req.Role,
			ClassChoice:  req.ClassChoice,
			School:       strings.TrimSpace(req.School),
		}
		if err := deps.Users.Create(r.Context(), user); err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "Cette adresse e-mail est déjà utilisée.")
				return
			}
			log.Printf("Failed to create user: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create account")
			return
		}

		signIn(w, r, deps, user, http.StatusCreated)
	}
}

// Login verifies the credentials, issues a token and initializes the
// calendar of the user.
func Login(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		user, err := deps.Users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			log.Printf("Failed to look up user: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to sign in")
			return
		}
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "E-mail ou mot de passe incorrect.")
			return
		}

		signIn(w, r, deps, user, http.StatusOK)
	}
}

func signIn(w http.ResponseWriter, r *http.Request, deps AuthDeps, user *models.User, status int) {
	ctx := r.Context()

	sess, err := deps.Sessions.Create(ctx, user.ID, deps.SessionTTL)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to sign in")
		return
	}

	_, view, err := deps.Registry.Init(ctx, *user)
	if err != nil {
		log.Printf("Failed to render calendar for %s: %v", user.ID, err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to render calendar")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, AuthResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
		View:      view,
	})
}

// Logout revokes the token of the request and drops the calendar session.
func Logout(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Sessions.Delete(r.Context(), middleware.TokenFrom(r.Context())); err != nil {
			log.Printf("Failed to delete session: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to sign out")
			return
		}
		if user, ok := middleware.UserFrom(r.Context()); ok {
			deps.Registry.Drop(user.ID)
		}

		http.SetCookie(w, &http.Cookie{
			Name:    middleware.SessionCookie,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
