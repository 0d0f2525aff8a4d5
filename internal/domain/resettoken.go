package domain

import (
	"context"
	"time"
)

// ResetToken is a single-use password recovery token delivered by email.
type ResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ResetTokenRepository defines persistence operations for recovery tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *ResetToken) error
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	// DeleteByUser removes every outstanding token for the user, used when
	// a password change invalidates the recovery flow.
	DeleteByUser(ctx context.Context, userID string) error
}
