package domain

import (
	"context"
	"time"
)

// Profile is the relational mirror of a user's metadata. The auth record
// and this row share the user ID as join key and are kept in sync by an
// ordered two-phase write on every profile save.
type Profile struct {
	UserID    string
	Name      string
	Email     string
	Age       int
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository defines persistence operations for profile rows.
type ProfileRepository interface {
	Insert(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}
