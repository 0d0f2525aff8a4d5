package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/notesync/notesync/internal/oauth"
	"github.com/notesync/notesync/internal/service"
)

const oauthStateCookieName = "oauth_state"

// OAuthHandler handles OAuth sign-in via an external identity provider.
type OAuthHandler struct {
	auth         *service.AuthService
	provider     oauth.Provider
	cookieSecure bool
}

// NewOAuthHandler creates a new OAuthHandler. provider may be nil when the
// deployment has no OAuth credentials configured.
func NewOAuthHandler(auth *service.AuthService, provider oauth.Provider, cookieSecure bool) *OAuthHandler {
	return &OAuthHandler{auth: auth, provider: provider, cookieSecure: cookieSecure}
}

// HandleLoginURL returns the provider redirect URL for a full-page
// navigation, the only thing the sign-in views need from this flow.
// GET /api/auth/oauth/google
// Response: {"url":"https://accounts.google.com/..."}
func (h *OAuthHandler) HandleLoginURL(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "OAuth sign-in is not configured.")
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("generate oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.provider.LoginURL(state),
	})
}

// HandleCallback completes the OAuth flow: verifies state, exchanges the
// code, signs the user in (creating the account on first visit), sets the
// session cookie, and redirects to the home view.
// GET /auth/callback?code=...&state=...
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	info, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth code exchange", "error", err)
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	_, token, err := h.auth.SignInWithOAuth(r.Context(), info)
	if err != nil {
		slog.Error("oauth sign-in", "error", err)
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})

	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
