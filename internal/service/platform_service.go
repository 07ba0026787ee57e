package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/pkg/cache"
)

// PublicPlatform is the unauthenticated view of a platform, shown on the
// login/signup screens.
type PublicPlatform struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Domain      string `json:"domain,omitempty"`
	Description string `json:"description,omitempty"`
}

// PlatformView is the super-admin view, including flags and user count.
type PlatformView struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	IsMaster    bool      `json:"isMaster"`
	UserCount   int       `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreatePlatformInput is the super-admin platform-creation request.
type CreatePlatformInput struct {
	Code        string
	Name        string
	Domain      string
	Description string
}

const activePlatformsCacheKey = "platforms:active"
const activePlatformsCacheTTL = 30 * time.Second

// PlatformService is the tenant directory. Reads are public or
// super-admin scoped; every mutation runs through the policy engine.
type PlatformService struct {
	platforms domain.PlatformRepository
	authz     *security.AuthorizationService
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewPlatformService creates a new platform service
func NewPlatformService(
	platforms domain.PlatformRepository,
	authz *security.AuthorizationService,
	c *cache.Cache,
	logger *slog.Logger,
) *PlatformService {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.New()
	}
	return &PlatformService{platforms: platforms, authz: authz, cache: c, logger: logger}
}

// ListActive returns the public subset of active platforms ordered by
// name. The listing is served from a short-lived cache: it is hit on every
// login screen render and changes rarely.
func (s *PlatformService) ListActive(ctx context.Context) ([]*PublicPlatform, error) {
	if cached, ok := s.cache.Get(activePlatformsCacheKey); ok {
		return cached.([]*PublicPlatform), nil
	}

	platforms, err := s.platforms.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PublicPlatform, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, &PublicPlatform{
			ID:          p.ID,
			Code:        p.Code,
			Name:        p.Name,
			Domain:      p.Domain,
			Description: p.Description,
		})
	}
	s.cache.Set(activePlatformsCacheKey, out, activePlatformsCacheTTL)
	return out, nil
}

// ListAll returns every platform with its user count. SUPER_ADMIN only.
func (s *PlatformService) ListAll(ctx context.Context, caller security.Caller) ([]*PlatformView, error) {
	if err := s.authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	platforms, err := s.platforms.ListWithUserCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PlatformView, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, viewOf(&p.Platform, p.UserCount))
	}
	return out, nil
}

// Create registers a new platform. SUPER_ADMIN only. New platforms start
// active and never start as master.
func (s *PlatformService) Create(ctx context.Context, caller security.Caller, input CreatePlatformInput) (*PlatformView, error) {
	if err := s.authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", domain.ErrValidation)
	}

	if existing, err := s.platforms.GetByCode(ctx, input.Code); err == nil && existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	platform := &domain.Platform{
		Code:        input.Code,
		Name:        input.Name,
		Domain:      input.Domain,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.platforms.Create(ctx, platform); err != nil {
		return nil, err
	}

	s.cache.Delete(activePlatformsCacheKey)
	s.logger.Info("platform created",
		slog.String("admin_id", caller.UserID),
		slog.String("platform", platform.Code),
	)
	return viewOf(platform, 0), nil
}

// Update mutates name/domain/description/isActive. SUPER_ADMIN only. The
// code is immutable: it is the lookup key clients have embedded.
func (s *PlatformService) Update(ctx context.Context, caller security.Caller, id string, upd domain.PlatformUpdate) (*PlatformView, error) {
	if err := s.authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	if _, err := s.platforms.GetByID(ctx, id); err != nil {
		return nil, err
	}
	platform, err := s.platforms.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(activePlatformsCacheKey)
	s.logger.Info("platform updated",
		slog.String("admin_id", caller.UserID),
		slog.String("platform", platform.Code),
	)
	return viewOf(platform, 0), nil
}

// SetMaster designates the platform as the single master tenant. The
// repository applies the clear-old/set-new pair as one transaction, so
// concurrent calls settle on exactly one master.
func (s *PlatformService) SetMaster(ctx context.Context, caller security.Caller, id string) (*PlatformView, error) {
	if err := s.authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if _, err := s.platforms.GetByID(ctx, id); err != nil {
		return nil, err
	}

	platform, err := s.platforms.SetMaster(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("master platform changed",
		slog.String("admin_id", caller.UserID),
		slog.String("platform", platform.Code),
	)
	return viewOf(platform, 0), nil
}

func viewOf(p *domain.Platform, userCount int) *PlatformView {
	return &PlatformView{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Domain:      p.Domain,
		Description: p.Description,
		IsActive:    p.IsActive,
		IsMaster:    p.IsMaster,
		UserCount:   userCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
