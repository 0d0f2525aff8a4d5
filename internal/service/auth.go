package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/email"
	"github.com/notesync/notesync/internal/oauth"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTokenTTL  = 24 * time.Hour
	recoveryTokenTTL = 15 * time.Minute
	resetLinkTTL     = time.Hour

	// JWT scope claims distinguishing a normal session from the short-lived
	// recovery grant issued by the emailed reset link.
	scopeSession  = "session"
	scopeRecovery = "recovery"
)

// AuthService handles account creation, credential and OAuth sign-in,
// password recovery, and JWT token operations.
type AuthService struct {
	users      domain.UserRepository
	profiles   domain.ProfileRepository
	tokens     domain.ResetTokenRepository
	mailer     email.Mailer
	jwtSecret  []byte
	bcryptCost int
	baseURL    string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users domain.UserRepository,
	profiles domain.ProfileRepository,
	tokens domain.ResetTokenRepository,
	mailer email.Mailer,
	jwtSecret string,
	bcryptCost int,
	baseURL string,
) *AuthService {
	return &AuthService{
		users:      users,
		profiles:   profiles,
		tokens:     tokens,
		mailer:     mailer,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		baseURL:    baseURL,
	}
}

// SignUp creates a new account with the given metadata, then inserts the
// relational profile row keyed by the new user ID. A failed profile insert
// is logged but does not roll back the already-created account; the profile
// workflow tolerates the missing row.
func (s *AuthService) SignUp(ctx context.Context, name string, age int, location, emailAddr, password string) (*domain.User, error) {
	if name == "" || emailAddr == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        emailAddr,
		PasswordHash: string(hash),
		Name:         name,
		Age:          age,
		Location:     location,
		Provider:     domain.ProviderEmail,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.profiles.Insert(ctx, &domain.Profile{
		UserID:   user.ID,
		Name:     name,
		Email:    emailAddr,
		Age:      age,
		Location: location,
	}); err != nil {
		slog.Error("insert profile row after sign-up", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// SignIn verifies credentials and returns the user with a signed session token.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	// OAuth-only accounts have no password to compare against.
	if user.PasswordHash == "" {
		return nil, "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	token, err := s.generateToken(user.ID, scopeSession, sessionTokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// SignInWithOAuth finds the account linked to the provider identity, creating
// it (with its profile row) on first sign-in, and returns a session token.
func (s *AuthService) SignInWithOAuth(ctx context.Context, info *oauth.UserInfo) (*domain.User, string, error) {
	user, err := s.users.GetByProvider(ctx, info.Provider, info.ProviderUserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("find user by provider: %w", err)
	}

	if user == nil || errors.Is(err, domain.ErrNotFound) {
		user = &domain.User{
			ID:             uuid.New().String(),
			Email:          info.Email,
			Name:           info.Name,
			Provider:       info.Provider,
			ProviderUserID: info.ProviderUserID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("create oauth user: %w", err)
		}

		if err := s.profiles.Insert(ctx, &domain.Profile{
			UserID: user.ID,
			Name:   info.Name,
			Email:  info.Email,
		}); err != nil {
			slog.Error("insert profile row after oauth sign-in", "user_id", user.ID, "error", err)
		}

		slog.Info("new user created via oauth", "user_id", user.ID, "provider", info.Provider)
	}

	token, err := s.generateToken(user.ID, scopeSession, sessionTokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// GetUserByID returns the auth record for the given user ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// RequestPasswordReset stores a one-hour recovery token and emails its link.
// An unknown email returns success without sending anything, so the endpoint
// does not reveal which addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	if emailAddr == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Info("password reset requested for unknown email", "email", emailAddr)
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.tokens.Create(ctx, &domain.ResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetLinkTTL),
	}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.baseURL + "/auth/recovery?token=" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	slog.Info("password reset mail sent", "user_id", user.ID)
	return nil
}

// ConsumeRecoveryLink validates an emailed reset token and exchanges it for
// a short-lived recovery JWT. The stored token stays valid until the
// password is actually changed, so a reloaded link still works.
func (s *AuthService) ConsumeRecoveryLink(ctx context.Context, token string) (string, error) {
	stored, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get reset token: %w", err)
	}

	if time.Now().After(stored.ExpiresAt) {
		return "", domain.ErrTokenExpired
	}

	recovery, err := s.generateToken(stored.UserID, scopeRecovery, recoveryTokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate recovery token: %w", err)
	}
	return recovery, nil
}

// UpdatePassword sets a new password for the user identified by a recovery
// grant. The password and its confirmation must match exactly; a mismatch
// is rejected before any credential work happens. On success every
// outstanding reset token for the user is consumed.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, password, confirmPassword string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: password not matched", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		slog.Error("clear reset tokens after password update", "user_id", userID, "error", err)
	}

	slog.Info("password updated", "user_id", userID)
	return nil
}

// ValidateToken parses a JWT and returns the user ID when it carries the
// expected scope.
func (s *AuthService) ValidateToken(tokenString, wantScope string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	scope, _ := claims["scope"].(string)
	if scope != wantScope {
		return "", domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// ValidateSessionToken validates a session-scoped JWT.
func (s *AuthService) ValidateSessionToken(tokenString string) (string, error) {
	return s.ValidateToken(tokenString, scopeSession)
}

// ValidateRecoveryToken validates a recovery-scoped JWT.
func (s *AuthService) ValidateRecoveryToken(tokenString string) (string, error) {
	return s.ValidateToken(tokenString, scopeRecovery)
}

// IssueSessionToken signs a fresh session token for the user. Used after
// sign-up, where the account was just created.
func (s *AuthService) IssueSessionToken(userID string) (string, error) {
	return s.generateToken(userID, scopeSession, sessionTokenTTL)
}

func (s *AuthService) generateToken(userID, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"scope": scope,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
		"jti":   strconv.FormatInt(now.UnixNano(), 36),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// generateResetToken returns a cryptographically random token for the
// emailed recovery link.
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
