package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notesync/notesync/internal/domain"
)

// ProfileService loads and saves the user's profile, keeping the relational
// profile row and the auth record's metadata in sync, and handles account
// deletion.
type ProfileService struct {
	users    domain.UserRepository
	profiles domain.ProfileRepository
	files    domain.FileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users domain.UserRepository, profiles domain.ProfileRepository, files domain.FileStore) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, files: files}
}

// Get returns the auth record, which carries the metadata the profile view
// renders (name, email, age, location, avatar URL).
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Save performs the ordered two-phase profile write: the relational profile
// row first, then the same fields mirrored into the auth record. A failed
// first phase aborts before the auth record is touched. A failed second
// phase leaves the two stores diverged; that partial success is logged and
// reported but not rolled back.
func (s *ProfileService) Save(ctx context.Context, userID, name, emailAddr string, age int, location string) error {
	if name == "" || emailAddr == "" {
		return fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	if age < 0 {
		return fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
	}

	if err := s.profiles.Update(ctx, &domain.Profile{
		UserID:   userID,
		Name:     name,
		Email:    emailAddr,
		Age:      age,
		Location: location,
	}); err != nil {
		return fmt.Errorf("update profile row: %w", err)
	}

	if err := s.users.UpdateMetadata(ctx, userID, name, emailAddr, age, location); err != nil {
		slog.Error("profile row and auth metadata diverged", "user_id", userID, "error", err)
		return fmt.Errorf("mirror metadata to auth record: %w", err)
	}

	return nil
}

// DeleteAccount permanently removes the account after verifying the caller
// supplied the account's email. The avatar object is deleted first; the
// profile row, tasks, and reset tokens go with the user row via foreign-key
// cascade.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID, emailAddr string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user.Email != emailAddr {
		return fmt.Errorf("%w: email does not match the account", domain.ErrInvalidInput)
	}

	if key, ok := strings.CutPrefix(user.AvatarURL, AvatarPublicPrefix); ok {
		if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Error("delete avatar during account deletion", "user_id", userID, "error", err)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
