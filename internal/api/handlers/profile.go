package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage"
	"github.com/simplygenda/backend/internal/storage/models"
)

// Role labels shown on the profile page.
const (
	RoleLabelStudent = "Étudiant·e"
	RoleLabelPrivate = "Privé"
)

// ProfileResponse is the profile page.
type ProfileResponse struct {
	ID          string `json:"id"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	Birthdate   string `json:"birthdate"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	RoleLabel   string `json:"role_label"`
	ClassChoice string `json:"class_choice"`
	School      string `json:"school"`
	AvatarURL   string `json:"avatar_url"`
}

// ProfileDeps groups the collaborators of the profile handlers.
type ProfileDeps struct {
	Users    *storage.UserRepository
	Avatars  *storage.AvatarStore
	Registry *agenda.Registry
}

func profileResponse(u *models.User) ProfileResponse {
	label := RoleLabelPrivate
	if u.IsStudent() {
		label = RoleLabelStudent
	}
	return ProfileResponse{
		ID:          u.ID,
		Firstname:   u.Firstname,
		Lastname:    u.Lastname,
		Email:       u.Email,
		Birthdate:   u.Birthdate,
		Address:     u.Address,
		Role:        u.Role,
		RoleLabel:   label,
		ClassChoice: u.ClassChoice,
		School:      u.School,
		AvatarURL:   u.AvatarURL,
	}
}

// Me returns the identity and metadata of the authenticated user.
func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// GetProfile returns the profile page of the authenticated user.
func GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}
		writeJSON(w, http.StatusOK, profileResponse(user))
	}
}

// UpdateProfile applies the submitted fields and refreshes the header of a
// live calendar session.
func UpdateProfile(deps ProfileDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		var upd models.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if upd.Firstname != nil && *upd.Firstname == "" {
			middleware.WriteAppError(w, apperr.Invalid("firstname", "Le prénom est requis."))
			return
		}
		if upd.Lastname != nil && *upd.Lastname == "" {
			middleware.WriteAppError(w, apperr.Invalid("lastname", "Le nom est requis."))
			return
		}
		if upd.ClassChoice != nil && !user.IsStudent() {
			empty := ""
			upd.ClassChoice = &empty
		}

		updated, err := deps.refresh(r, user.ID, func() error {
			return deps.Users.UpdateProfile(r.Context(), user.ID, upd)
		})
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profileResponse(updated))
	}
}

// UploadAvatar stores a multipart "avatar" file and links it to the profile.
func UploadAvatar(deps ProfileDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+(1<<20))
		file, header, err := r.FormFile("avatar")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Missing avatar file")
			return
		}
		defer file.Close()

		url, err := deps.Avatars.Save(user.ID, header.Filename, file)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedAvatar) || errors.Is(err, storage.ErrAvatarTooLarge) {
				middleware.WriteAppError(w, apperr.Invalid("avatar", "Image non prise en charge."))
				return
			}
			middleware.WriteAppError(w, apperr.Collaborator("storing avatar", err))
			return
		}

		updated, err := deps.refresh(r, user.ID, func() error {
			return deps.Users.SetAvatarURL(r.Context(), user.ID, url)
		})
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profileResponse(updated))
	}
}

// refresh runs write, reloads the user and pushes the new metadata to the
// live calendar session.
func (deps ProfileDeps) refresh(r *http.Request, userID string, write func() error) (*models.User, error) {
	if err := write(); err != nil {
		return nil, apperr.Collaborator("updating profile", err)
	}

	updated, err := deps.Users.GetByID(r.Context(), userID)
	if err != nil {
		return nil, apperr.Collaborator("loading profile", err)
	}
	if updated == nil {
		return nil, apperr.Collaborator("loading profile", storage.ErrNotFound)
	}

	if s, ok := deps.Registry.Get(userID); ok {
		if _, err := s.SetUser(*updated); err != nil {
			log.Printf("Failed to refresh calendar header for %s: %v", userID, err)
		}
	}
	return updated, nil
}
