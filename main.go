package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/notesync/notesync/internal/config"
	"github.com/notesync/notesync/internal/email"
	"github.com/notesync/notesync/internal/handler"
	"github.com/notesync/notesync/internal/metrics"
	"github.com/notesync/notesync/internal/oauth"
	"github.com/notesync/notesync/internal/repository/sqlite"
	"github.com/notesync/notesync/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	var mailer email.Mailer = email.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		slog.Warn("SMTP_HOST not set, reset links will be logged instead of mailed")
	}

	var provider oauth.Provider
	if cfg.Google.ClientID != "" {
		provider = oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, OAuth sign-in disabled")
	}

	authService := service.NewAuthService(db.Users(), db.Profiles(), db.ResetTokens(), mailer, cfg.JWTSecret, cfg.BcryptCost, cfg.BaseURL)
	profileService := service.NewProfileService(db.Users(), db.Profiles(), db.FileStore())
	avatarService := service.NewAvatarService(db.Users(), db.FileStore())
	taskService := service.NewTaskService(db.Tasks())
	events := service.NewAuthEventBroadcaster()

	// 10 credential attempts per client, refilling one every 6 seconds.
	limiter := service.NewTokenBucket(1.0/6.0, 10)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, events, cfg.CookieSecure),
		OAuth:       handler.NewOAuthHandler(authService, provider, cfg.CookieSecure),
		Profile:     handler.NewProfileHandler(profileService, avatarService, cfg.CookieSecure),
		Tasks:       handler.NewTaskHandler(taskService),
		Events:      handler.NewEventsHandler(events),
		SPA:         handler.NewSPAHandler(authService),
		AuthService: authService,
		Limiter:     limiter,
	})

	collector := metrics.NewCollector()
	mux.Handle("GET /metrics", collector.Handler())

	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		slog.Error("failed to build compression adapter", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           collector.Middleware(handler.SecurityHeaders(compress(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
