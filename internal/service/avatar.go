package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/notesync/notesync/internal/domain"
)

// AvatarPublicPrefix is the URL prefix under which stored objects are
// publicly served. Stripping it from an avatar URL recovers the storage key.
const AvatarPublicPrefix = "/files/"

const maxAvatarSize = 5 * 1024 * 1024 // 5MB

// AvatarService stores profile images and keeps the avatar URL in the auth
// record pointing at the current object.
type AvatarService struct {
	users domain.UserRepository
	files domain.FileStore
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(users domain.UserRepository, files domain.FileStore) *AvatarService {
	return &AvatarService{users: users, files: files}
}

// Upload validates and stores a new avatar image under a key namespaced by
// the user ID, then persists its public URL into the auth record. The key
// is stable per user, so a replacement overwrites the previous object.
// If the metadata update fails the stored object is left in place; the next
// successful upload simply overwrites it.
func (s *AvatarService) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", fmt.Errorf("%w: only JPEG and PNG images are accepted", domain.ErrInvalidInput)
	}
	if len(data) > maxAvatarSize {
		return "", fmt.Errorf("%w: image exceeds 5MB limit", domain.ErrInvalidInput)
	}

	key := "avatars/" + userID + "/profile" + avatarExt(filename, contentType)

	if err := s.files.Save(ctx, key, contentType, data); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}

	publicURL := AvatarPublicPrefix + key
	if err := s.users.UpdateAvatarURL(ctx, userID, publicURL); err != nil {
		slog.Error("persist avatar url after upload", "user_id", userID, "error", err)
		return "", fmt.Errorf("update avatar url: %w", err)
	}

	return publicURL, nil
}

// Remove deletes the current avatar object and clears the avatar URL in the
// auth record. When the stored URL does not carry the public prefix (the
// default placeholder avatar) this is a no-op.
func (s *AvatarService) Remove(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	key, ok := strings.CutPrefix(user.AvatarURL, AvatarPublicPrefix)
	if !ok || key == "" {
		return nil
	}

	if err := s.files.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete avatar object: %w", err)
	}

	if err := s.users.UpdateAvatarURL(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear avatar url: %w", err)
	}
	return nil
}

// GetFile returns the stored object bytes and content type for a public key.
func (s *AvatarService) GetFile(ctx context.Context, key string) ([]byte, string, error) {
	return s.files.Get(ctx, key)
}

// avatarExt picks the file extension for the storage key, preferring the
// uploaded filename and falling back to the detected content type.
func avatarExt(filename, contentType string) string {
	switch ext := strings.ToLower(path.Ext(filename)); ext {
	case ".jpg", ".jpeg", ".png":
		return ext
	}
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
