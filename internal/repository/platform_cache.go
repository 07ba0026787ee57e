package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/infrastructure/redis"
)

const platformCacheTTL = 5 * time.Minute

// CachedPlatformRepository is a read-through redis decorator for
// platform-by-code lookups, which sit on the hot path of every signup and
// login. All other calls pass through; mutations invalidate the affected
// code. Cache failures degrade to the inner repository, never to an error.
type CachedPlatformRepository struct {
	inner  domain.PlatformRepository
	redis  *redis.Client
	logger *slog.Logger
}

// NewCachedPlatformRepository wraps inner with a redis cache.
func NewCachedPlatformRepository(inner domain.PlatformRepository, client *redis.Client, logger *slog.Logger) *CachedPlatformRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedPlatformRepository{inner: inner, redis: client, logger: logger}
}

func (r *CachedPlatformRepository) GetByCode(ctx context.Context, code string) (*domain.Platform, error) {
	key := cacheKey(code)
	if raw, err := r.redis.Get(ctx, key); err == nil {
		platform := &domain.Platform{}
		if err := json.Unmarshal([]byte(raw), platform); err == nil {
			return platform, nil
		}
	}

	platform, err := r.inner.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(platform); err == nil {
		if err := r.redis.Set(ctx, key, raw, platformCacheTTL); err != nil {
			r.logger.Warn("failed to cache platform",
				slog.String("code", code),
				slog.String("error", err.Error()),
			)
		}
	}
	return platform, nil
}

func (r *CachedPlatformRepository) Create(ctx context.Context, platform *domain.Platform) error {
	return r.inner.Create(ctx, platform)
}

func (r *CachedPlatformRepository) GetByID(ctx context.Context, id string) (*domain.Platform, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedPlatformRepository) Update(ctx context.Context, id string, upd domain.PlatformUpdate) (*domain.Platform, error) {
	platform, err := r.inner.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, platform.Code)
	return platform, nil
}

func (r *CachedPlatformRepository) ListActive(ctx context.Context) ([]*domain.Platform, error) {
	return r.inner.ListActive(ctx)
}

func (r *CachedPlatformRepository) ListWithUserCounts(ctx context.Context) ([]*domain.PlatformWithCount, error) {
	return r.inner.ListWithUserCounts(ctx)
}

func (r *CachedPlatformRepository) SetMaster(ctx context.Context, id string) (*domain.Platform, error) {
	platform, err := r.inner.SetMaster(ctx, id)
	if err != nil {
		return nil, err
	}
	// The previous master also changed; drop every cached platform rather
	// than tracking which one it was.
	if keys, err := r.redis.Keys(ctx, cacheKey("*")); err == nil {
		for _, key := range keys {
			r.redis.Delete(ctx, key)
		}
	}
	return platform, nil
}

func (r *CachedPlatformRepository) invalidate(ctx context.Context, code string) {
	if err := r.redis.Delete(ctx, cacheKey(code)); err != nil {
		r.logger.Warn("failed to invalidate platform cache",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}
}

func cacheKey(code string) string {
	return "platform:code:" + code
}
