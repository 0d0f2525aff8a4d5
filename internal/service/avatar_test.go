package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/service"
)

func newTestAvatarService(t *testing.T) (*service.AvatarService, *service.ProfileService, string) {
	t.Helper()
	db := newTestDB(t)
	auth := service.NewAuthService(db.Users(), db.Profiles(), db.ResetTokens(), &capturingMailer{}, testJWTSecret, 4, "http://localhost:8080")

	user, err := auth.SignUp(context.Background(), "User", 30, "", "avatar@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	avatars := service.NewAvatarService(db.Users(), db.FileStore())
	profiles := service.NewProfileService(db.Users(), db.Profiles(), db.FileStore())
	return avatars, profiles, user.ID
}

func TestAvatarService_UploadAndServe(t *testing.T) {
	avatars, profiles, userID := newTestAvatarService(t)
	ctx := context.Background()

	data := []byte("fake-png-bytes")
	url, err := avatars.Upload(ctx, userID, "me.png", "image/png", data)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, service.AvatarPublicPrefix) {
		t.Fatalf("expected public URL under %s, got %s", service.AvatarPublicPrefix, url)
	}

	user, err := profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.AvatarURL != url {
		t.Fatalf("avatar URL not persisted: %q != %q", user.AvatarURL, url)
	}

	got, contentType, err := avatars.GetFile(ctx, strings.TrimPrefix(url, service.AvatarPublicPrefix))
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("stored bytes do not round-trip")
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %s", contentType)
	}
}

func TestAvatarService_Upload_ReplacesInPlace(t *testing.T) {
	avatars, _, userID := newTestAvatarService(t)
	ctx := context.Background()

	first, err := avatars.Upload(ctx, userID, "a.png", "image/png", []byte("v1"))
	if err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	second, err := avatars.Upload(ctx, userID, "b.png", "image/png", []byte("v2"))
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if first != second {
		t.Fatalf("expected a stable storage key per user, got %s then %s", first, second)
	}

	got, _, err := avatars.GetFile(ctx, strings.TrimPrefix(second, service.AvatarPublicPrefix))
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected replaced object, got %q", got)
	}
}

func TestAvatarService_Upload_RejectsContentType(t *testing.T) {
	avatars, _, userID := newTestAvatarService(t)

	_, err := avatars.Upload(context.Background(), userID, "note.txt", "text/plain", []byte("hi"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAvatarService_Remove(t *testing.T) {
	avatars, profiles, userID := newTestAvatarService(t)
	ctx := context.Background()

	url, err := avatars.Upload(ctx, userID, "me.jpg", "image/jpeg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := avatars.Remove(ctx, userID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	user, err := profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.AvatarURL != "" {
		t.Fatalf("expected cleared avatar URL, got %q", user.AvatarURL)
	}

	key := strings.TrimPrefix(url, service.AvatarPublicPrefix)
	if _, _, err := avatars.GetFile(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected object gone, got %v", err)
	}
}

func TestAvatarService_Remove_NoAvatarIsNoop(t *testing.T) {
	avatars, _, userID := newTestAvatarService(t)

	if err := avatars.Remove(context.Background(), userID); err != nil {
		t.Fatalf("expected no-op remove to succeed, got %v", err)
	}
}
