package domain

import (
	"context"
	"time"
)

// User is the authentication-service record for an account. Besides the
// credentials it carries the metadata attributes (name, age, location,
// avatar URL) that the profile workflow reads and mirrors into the
// relational profile row.
type User struct {
	ID             string // assigned at account creation, immutable
	Email          string
	PasswordHash   string // empty for OAuth-only accounts
	Name           string
	Age            int
	Location       string
	AvatarURL      string // empty means the default placeholder avatar
	Provider       string // "email" or an OAuth provider like "google"
	ProviderUserID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const ProviderEmail = "email"

// UserRepository defines persistence operations for auth user records.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByProvider(ctx context.Context, provider, providerUserID string) (*User, error)
	// UpdateMetadata mirrors profile attributes into the auth record.
	UpdateMetadata(ctx context.Context, id, name, email string, age int, location string) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
