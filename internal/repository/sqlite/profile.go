package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notesync/notesync/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository using SQLite.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new SQLite-backed ProfileRepository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db.SqlDB}
}

func (r *ProfileRepository) Insert(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, name, email, age, location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID, profile.Name, profile.Email, profile.Age, profile.Location, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, age, location, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&profile.UserID, &profile.Name, &profile.Email, &profile.Age,
		&profile.Location, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET name = ?, email = ?, age = ?, location = ?, updated_at = ?
		 WHERE user_id = ?`,
		profile.Name, profile.Email, profile.Age, profile.Location, time.Now().UTC(), profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRowAffected(result)
}
