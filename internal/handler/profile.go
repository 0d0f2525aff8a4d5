package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/service"
)

// ProfileHandler handles profile load/save, avatar upload/removal, and
// account deletion.
type ProfileHandler struct {
	profiles     *service.ProfileService
	avatars      *service.AvatarService
	cookieSecure bool
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, avatars *service.AvatarService, cookieSecure bool) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, avatars: avatars, cookieSecure: cookieSecure}
}

// HandleGet returns the caller's profile attributes.
// GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleSave persists edited profile attributes through the ordered
// two-phase write (profile row, then auth metadata).
// PUT /api/profile
// Request: {"name":"...","email":"...","age":30,"location":"..."}
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Age      int    `json:"age"`
		Location string `json:"location"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.profiles.Save(r.Context(), user.ID, req.Name, req.Email, req.Age, req.Location); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found.")
			return
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An account with that email already exists.")
			return
		}
		slog.Error("save profile", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	updated, err := h.profiles.Get(r.Context(), user.ID)
	if err != nil {
		slog.Error("reload profile after save", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(updated),
	})
}

// HandleAvatarUpload replaces the caller's profile image.
// POST /api/profile/avatar (multipart, field "image")
// Response: {"avatarUrl":"/files/avatars/..."}
func (h *ProfileHandler) HandleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "File too large.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read avatar upload", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	// Detect content type from file bytes (more reliable than multipart header).
	contentType := http.DetectContentType(data)

	url, err := h.avatars.Upload(r.Context(), user.ID, header.Filename, contentType, data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("upload avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}

// HandleAvatarRemove deletes the current profile image. A missing custom
// avatar (placeholder in use) is a silent no-op.
// DELETE /api/profile/avatar
func (h *ProfileHandler) HandleAvatarRemove(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := h.avatars.Remove(r.Context(), user.ID); err != nil {
		slog.Error("remove avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFileServe streams a stored object, the public-URL side of the
// object store.
// GET /files/{key...}
func (h *ProfileHandler) HandleFileServe(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data, contentType, err := h.avatars.GetFile(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve file", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleAccountDelete permanently deletes the caller's account after the
// explicit confirmation payload. The email must match the account.
// POST /api/account/delete
// Request: {"userId":"...","userEmail":"..."}
func (h *ProfileHandler) HandleAccountDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		UserID    string `json:"userId"`
		UserEmail string `json:"userEmail"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.UserID != user.ID {
		writeError(w, http.StatusForbidden, "You can only delete your own account.")
		return
	}

	if err := h.profiles.DeleteAccount(r.Context(), user.ID, req.UserEmail); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("delete account", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Your account has been deleted!",
	})
}
