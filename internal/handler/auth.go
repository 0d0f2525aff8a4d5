package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	events       *service.AuthEventBroadcaster
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, events *service.AuthEventBroadcaster, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, events: events, cookieSecure: cookieSecure}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// HandleSignUp processes a JSON registration request.
// POST /api/auth/signup
// Request:  {"name":"...","age":30,"location":"...","email":"...","password":"..."}
// Response: {"user": {...}} with the session cookie set
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Age      int    `json:"age"`
		Location string `json:"location"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Name, req.Age, req.Location, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An account with that email already exists.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("sign up", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	token, err := h.auth.IssueSessionToken(user.ID)
	if err != nil {
		slog.Error("issue session token after sign-up", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleSignIn processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}} with the session cookie set. The service error
// message is returned verbatim on bad credentials.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid login credentials")
			return
		}
		slog.Error("sign in", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleSignOut clears the session cookie.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, sessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user, the session check the
// views run on mount.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleResetRequest processes a password-reset request.
// POST /api/auth/reset
// Request:  {"email":"..."}
// Response: 202 regardless of whether the email has an account.
func (h *AuthHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("request password reset", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

// HandleRecoveryLink is the target of the emailed reset link. It exchanges
// the stored token for a short-lived recovery cookie, pushes the
// PASSWORD_RECOVERY event to connected clients, and redirects to the reset
// view, which switches into password-update mode on the event.
// GET /auth/recovery?token=...
func (h *AuthHandler) HandleRecoveryLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/forgot-password?error=invalid", http.StatusSeeOther)
		return
	}

	recovery, err := h.auth.ConsumeRecoveryLink(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			http.Redirect(w, r, "/forgot-password?error=expired", http.StatusSeeOther)
			return
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Error("consume recovery link", "error", err)
		}
		http.Redirect(w, r, "/forgot-password?error=invalid", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     recoveryCookieName,
		Value:    recovery,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   900, // 15 minutes, matching the recovery grant
	})

	h.events.Broadcast(service.AuthEvent{Type: service.AuthEventPasswordRecovery})

	// The query flag covers this tab; the broadcast covers tabs already
	// sitting on the reset view.
	http.Redirect(w, r, "/forgot-password?recovery=1", http.StatusSeeOther)
}

// HandlePasswordUpdate sets a new password under a recovery grant.
// POST /api/auth/password
// Request: {"password":"...","confirmPassword":"..."}
// On success both cookies are cleared; the client must sign in fresh.
func (h *AuthHandler) HandlePasswordUpdate(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(recoveryCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Password recovery has not been started.")
		return
	}

	userID, err := h.auth.ValidateRecoveryToken(cookie.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Password recovery has expired. Request a new link.")
		return
	}

	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), userID, req.Password, req.ConfirmPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("update password", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	// Force a fresh sign-in; the recovery flow never yields a session.
	h.clearCookie(w, recoveryCookieName)
	h.clearCookie(w, sessionCookieName)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully!",
	})
}
