package handler

import (
	_ "embed"
	"net/http"

	"github.com/notesync/notesync/internal/service"
)

//go:embed index.html
var indexHTML []byte

// SPAHandler serves the single-page shell and enforces the session gate on
// its routes: visitors with a valid session never see the auth views, and
// visitors without one never see the app views. An unverifiable session
// fails closed toward sign-in.
type SPAHandler struct {
	auth *service.AuthService
}

// NewSPAHandler creates a new SPAHandler.
func NewSPAHandler(auth *service.AuthService) *SPAHandler {
	return &SPAHandler{auth: auth}
}

func (h *SPAHandler) hasSession(r *http.Request) bool {
	_, err := authenticateRequest(r, h.auth)
	return err == nil
}

// HandlePublic serves the shell for the sign-in side of the app.
// GET /  /login  /signup  /forgot-password
func (h *SPAHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	// The forgot-password view stays reachable with a session so the
	// recovery redirect always lands.
	if r.URL.Path != "/forgot-password" && h.hasSession(r) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.serveShell(w)
}

// HandleProtected serves the shell for the app side.
// GET /home  /profile
func (h *SPAHandler) HandleProtected(w http.ResponseWriter, r *http.Request) {
	if !h.hasSession(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.serveShell(w)
}

func (h *SPAHandler) serveShell(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(indexHTML)
}
