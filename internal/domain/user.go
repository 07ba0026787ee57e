package domain

import (
	"context"
	"time"
)

// Role is the privilege tier of a user account.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r grants access to admin-only operations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Status is the lifecycle state of a user account.
// PENDING and BLOCKED both refuse login; only an admin transition
// reaches ACTIVE from PENDING.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusBlocked:
		return true
	}
	return false
}

// User represents an account scoped to a single platform.
// The pair (Email, PlatformID) is unique; the same email may exist
// independently under different platforms.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt digest, never returned in API payloads
	FullName     string
	Role         Role
	Status       Status
	PlatformID   string
	APIKey       string // opaque per-user secret, self-service only
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate enumerates the only fields an admin mutation may touch.
// Nil means "leave unchanged"; at least one field must be set.
type UserUpdate struct {
	Status *Status
	Role   *Role
}

// Empty reports whether the update carries no fields at all.
func (u UserUpdate) Empty() bool {
	return u.Status == nil && u.Role == nil
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	PlatformID string // empty means all platforms
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmailAndPlatform(ctx context.Context, email, platformID string) (*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAPIKey(ctx context.Context, id, apiKey string) error
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	CountByPlatform(ctx context.Context, platformID string) (int, error)
}
