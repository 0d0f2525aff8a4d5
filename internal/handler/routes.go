package handler

import (
	"net/http"

	"github.com/notesync/notesync/internal/service"
)

// Handlers groups everything RegisterRoutes needs to wire the mux.
type Handlers struct {
	Auth    *AuthHandler
	OAuth   *OAuthHandler
	Profile *ProfileHandler
	Tasks   *TaskHandler
	Events  *EventsHandler
	SPA     *SPAHandler

	AuthService *service.AuthService
	Limiter     *service.TokenBucket
}

// RegisterRoutes mounts all application routes on the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(h.AuthService, fn)
	}
	limit := func(fn http.HandlerFunc) http.Handler {
		return RateLimit(h.Limiter, fn)
	}

	// Credential endpoints sit behind the rate limiter.
	mux.Handle("POST /api/auth/signup", limit(h.Auth.HandleSignUp))
	mux.Handle("POST /api/auth/login", limit(h.Auth.HandleSignIn))
	mux.Handle("POST /api/auth/reset", limit(h.Auth.HandleResetRequest))
	mux.Handle("POST /api/auth/password", limit(h.Auth.HandlePasswordUpdate))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.HandleSignOut)
	mux.Handle("GET /api/auth/me", protect(h.Auth.HandleMe))
	mux.HandleFunc("GET /api/auth/events", h.Events.HandleStream)
	mux.HandleFunc("GET /auth/recovery", h.Auth.HandleRecoveryLink)

	mux.HandleFunc("GET /api/auth/oauth/google", h.OAuth.HandleLoginURL)
	mux.HandleFunc("GET /auth/callback", h.OAuth.HandleCallback)

	mux.Handle("GET /api/profile", protect(h.Profile.HandleGet))
	mux.Handle("PUT /api/profile", protect(h.Profile.HandleSave))
	mux.Handle("POST /api/profile/avatar", protect(h.Profile.HandleAvatarUpload))
	mux.Handle("DELETE /api/profile/avatar", protect(h.Profile.HandleAvatarRemove))
	mux.Handle("POST /api/account/delete", protect(h.Profile.HandleAccountDelete))
	mux.HandleFunc("GET /files/{key...}", h.Profile.HandleFileServe)

	mux.Handle("GET /api/tasks", protect(h.Tasks.HandleList))
	mux.Handle("POST /api/tasks", protect(h.Tasks.HandleCreate))
	mux.Handle("PUT /api/tasks/{id}", protect(h.Tasks.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protect(h.Tasks.HandleDelete))

	// The single-page shell and its session gate.
	mux.HandleFunc("GET /{$}", h.SPA.HandlePublic)
	mux.HandleFunc("GET /login", h.SPA.HandlePublic)
	mux.HandleFunc("GET /signup", h.SPA.HandlePublic)
	mux.HandleFunc("GET /forgot-password", h.SPA.HandlePublic)
	mux.HandleFunc("GET /home", h.SPA.HandleProtected)
	mux.HandleFunc("GET /profile", h.SPA.HandleProtected)

	mux.HandleFunc("GET /healthz", HandleHealthz)
}
