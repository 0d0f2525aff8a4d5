package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notesync/notesync/internal/domain"
)

// ResetTokenRepository implements domain.ResetTokenRepository using SQLite.
type ResetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new SQLite-backed ResetTokenRepository.
func NewResetTokenRepository(db *DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db.SqlDB}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *domain.ResetToken) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token.Token, token.UserID, token.ExpiresAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	token.CreatedAt = now
	return nil
}

func (r *ResetTokenRepository) GetByToken(ctx context.Context, tok string) (*domain.ResetToken, error) {
	token := &domain.ResetToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM reset_tokens WHERE token = ?`, tok,
	).Scan(&token.Token, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query reset token: %w", err)
	}
	return token, nil
}

func (r *ResetTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete reset tokens: %w", err)
	}
	return nil
}
