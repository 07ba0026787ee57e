package domain

import (
	"context"
	"time"
)

// Platform is an isolated tenant namespace of users, looked up by its
// immutable code. At most one platform holds IsMaster at any time.
type Platform struct {
	ID          string
	Code        string
	Name        string
	Domain      string
	Description string
	IsActive    bool
	IsMaster    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlatformUpdate enumerates the mutable platform fields. Code is
// deliberately absent: it is the lookup key and immutable after creation.
type PlatformUpdate struct {
	Name        *string
	Domain      *string
	Description *string
	IsActive    *bool
}

// Empty reports whether the update carries no fields at all.
func (p PlatformUpdate) Empty() bool {
	return p.Name == nil && p.Domain == nil && p.Description == nil && p.IsActive == nil
}

// PlatformWithCount pairs a platform with its user count for the
// super-admin listing.
type PlatformWithCount struct {
	Platform
	UserCount int
}

// PlatformRepository defines data access for platforms.
type PlatformRepository interface {
	Create(ctx context.Context, platform *Platform) error
	GetByID(ctx context.Context, id string) (*Platform, error)
	GetByCode(ctx context.Context, code string) (*Platform, error)
	Update(ctx context.Context, id string, upd PlatformUpdate) (*Platform, error)
	ListActive(ctx context.Context) ([]*Platform, error)
	ListWithUserCounts(ctx context.Context) ([]*PlatformWithCount, error)
	// SetMaster atomically clears the flag on the previous holder and sets
	// it on the given platform. No partial state is ever committed.
	SetMaster(ctx context.Context, id string) (*Platform, error)
}
