package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/oauth"
	"github.com/notesync/notesync/internal/repository/sqlite"
	"github.com/notesync/notesync/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0"

// capturingMailer records reset links instead of sending mail.
type capturingMailer struct {
	to   string
	link string
}

func (m *capturingMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.to = to
	m.link = link
	return nil
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB, *capturingMailer) {
	t.Helper()
	db := newTestDB(t)
	mailer := &capturingMailer{}
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), db.Profiles(), db.ResetTokens(), mailer, testJWTSecret, 4, "http://localhost:8080")
	return auth, db, mailer
}

func TestAuthService_SignUp_Success(t *testing.T) {
	auth, db, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "New User", 30, "Berlin", "new@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected email new@example.com, got %s", user.Email)
	}

	// The relational profile row mirrors the metadata under the same ID.
	profile, err := db.Profiles().GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if profile.Name != "New User" || profile.Age != 30 || profile.Location != "Berlin" {
		t.Fatalf("profile row does not mirror sign-up metadata: %+v", profile)
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "User 1", 20, "", "dup@example.com", "password123")
	if err != nil {
		t.Fatalf("first sign-up: %v", err)
	}

	_, err = auth.SignUp(ctx, "User 2", 25, "", "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_SignUp_WeakPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.SignUp(context.Background(), "Weak", 20, "", "weak@example.com", "short")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_SignUp_NegativeAge(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.SignUp(context.Background(), "Neg", -1, "", "neg@example.com", "password123")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	created, err := auth.SignUp(ctx, "User", 30, "", "login@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	user, token, err := auth.SignIn(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}

	userID, err := auth.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if userID != created.ID {
		t.Fatalf("token subject mismatch: %s != %s", userID, created.ID)
	}
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "User", 30, "", "wrong@example.com", "password123"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, _, err := auth.SignIn(ctx, "wrong@example.com", "not-the-password")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, _, err := auth.SignIn(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_SessionTokenRejectedAsRecovery(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	user, err := auth.SignUp(context.Background(), "User", 30, "", "scope@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := auth.IssueSessionToken(user.ID)
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	if _, err := auth.ValidateRecoveryToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected session token to fail recovery validation, got %v", err)
	}
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	if _, err := auth.ValidateSessionToken("not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	auth, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "User", 30, "", "reset@example.com", "oldpassword")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := auth.RequestPasswordReset(ctx, "reset@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if mailer.to != "reset@example.com" {
		t.Fatalf("expected mail to reset@example.com, got %q", mailer.to)
	}

	idx := strings.Index(mailer.link, "token=")
	if idx < 0 {
		t.Fatalf("reset link carries no token: %q", mailer.link)
	}
	resetToken := mailer.link[idx+len("token="):]

	recovery, err := auth.ConsumeRecoveryLink(ctx, resetToken)
	if err != nil {
		t.Fatalf("ConsumeRecoveryLink: %v", err)
	}

	userID, err := auth.ValidateRecoveryToken(recovery)
	if err != nil {
		t.Fatalf("ValidateRecoveryToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("recovery token subject mismatch: %s != %s", userID, user.ID)
	}

	if err := auth.UpdatePassword(ctx, userID, "newpassword1", "newpassword1"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if _, _, err := auth.SignIn(ctx, "reset@example.com", "oldpassword"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("old password still accepted after reset: %v", err)
	}
	if _, _, err := auth.SignIn(ctx, "reset@example.com", "newpassword1"); err != nil {
		t.Fatalf("new password rejected after reset: %v", err)
	}

	// The stored reset token was consumed by the password change.
	if _, err := auth.ConsumeRecoveryLink(ctx, resetToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected consumed token to be rejected, got %v", err)
	}
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	auth, _, mailer := newTestAuthService(t)

	if err := auth.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if mailer.link != "" {
		t.Fatalf("expected no mail for unknown email, got link %q", mailer.link)
	}
}

func TestAuthService_ConsumeRecoveryLink_Expired(t *testing.T) {
	auth, db, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "User", 30, "", "expired@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := db.ResetTokens().Create(ctx, &domain.ResetToken{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("Create reset token: %v", err)
	}

	if _, err := auth.ConsumeRecoveryLink(ctx, "expired-token"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_UpdatePassword_Mismatch(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "User", 30, "", "mismatch@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	err = auth.UpdatePassword(ctx, user.ID, "newpassword1", "different456")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "password not matched") {
		t.Fatalf("expected mismatch message, got %q", err.Error())
	}

	// The stored credential must be untouched by the rejected attempt.
	if _, _, err := auth.SignIn(ctx, "mismatch@example.com", "password123"); err != nil {
		t.Fatalf("original password no longer accepted: %v", err)
	}
}

func TestAuthService_SignInWithOAuth_CreatesOnce(t *testing.T) {
	auth, db, _ := newTestAuthService(t)
	ctx := context.Background()

	info := &oauth.UserInfo{
		Provider:       "google",
		ProviderUserID: "goog-123",
		Email:          "oauth@example.com",
		Name:           "OAuth User",
	}

	first, _, err := auth.SignInWithOAuth(ctx, info)
	if err != nil {
		t.Fatalf("first SignInWithOAuth: %v", err)
	}
	second, _, err := auth.SignInWithOAuth(ctx, info)
	if err != nil {
		t.Fatalf("second SignInWithOAuth: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same account for repeat oauth sign-in, got %s and %s", first.ID, second.ID)
	}

	// OAuth accounts have no password and cannot sign in with one.
	if _, _, err := auth.SignIn(ctx, "oauth@example.com", "anything1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for password sign-in on oauth account, got %v", err)
	}

	// The profile row exists for the oauth account too.
	if _, err := db.Profiles().GetByUserID(ctx, first.ID); err != nil {
		t.Fatalf("profile row missing for oauth account: %v", err)
	}
}
