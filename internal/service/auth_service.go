package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/observability/metrics"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
)

// UserProfile is the public view of a user, safe for API payloads.
type UserProfile struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"fullName,omitempty"`
	Role      domain.Role     `json:"role"`
	Status    domain.Status   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Platform  PlatformSummary `json:"platform"`
}

// PlatformSummary is the public subset of a platform.
type PlatformSummary struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// LoginResult carries the signed token and the authenticated profile.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserProfile `json:"user"`
}

// AuthService orchestrates signup, login, profile lookup, and self-service
// password change.
type AuthService struct {
	users        domain.UserRepository
	platforms    domain.PlatformRepository
	tokenManager *auth.TokenManager
	hasher       *auth.PasswordHasher
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.UserRepository,
	platforms domain.PlatformRepository,
	tokenManager *auth.TokenManager,
	hasher *auth.PasswordHasher,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:        users,
		platforms:    platforms,
		tokenManager: tokenManager,
		hasher:       hasher,
		logger:       logger,
	}
}

// Signup registers a new account on the given platform. The account starts
// PENDING with role USER and cannot authenticate until an admin activates
// it, so no token is issued here.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName, platformCode string) (*UserProfile, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if platformCode == "" {
		return nil, fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	platform, err := s.resolveActivePlatform(ctx, platformCode)
	if err != nil {
		metrics.ObserveSignup("rejected")
		return nil, err
	}

	// Friendly duplicate check on the common path. The database unique
	// index on (email, platform_id) is the real guard against concurrent
	// signups; Create maps its violation to the same error.
	if existing, err := s.users.GetByEmailAndPlatform(ctx, email, platform.ID); err == nil && existing != nil {
		metrics.ObserveSignup("duplicate")
		return nil, domain.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         domain.RoleUser,
		Status:       domain.StatusPending,
		PlatformID:   platform.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		metrics.ObserveSignup("error")
		s.logger.Error("failed to create user",
			slog.String("platform", platform.Code),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	metrics.ObserveSignup("created")
	s.logger.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("platform", platform.Code),
	)
	return profileOf(user, platform), nil
}

// Login authenticates a user against a platform and issues a token. Wrong
// email, wrong password, and unknown account are indistinguishable in the
// returned error: the password check runs even when the user is absent so
// the timing does not reveal account existence either.
func (s *AuthService) Login(ctx context.Context, email, password, platformCode string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if platformCode == "" {
		return nil, fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}

	platform, err := s.resolveActivePlatform(ctx, platformCode)
	if err != nil {
		metrics.ObserveLogin("platform_rejected")
		return nil, err
	}

	user, err := s.users.GetByEmailAndPlatform(ctx, email, platform.ID)
	if err != nil {
		// Burn a comparison against a constant digest to keep the
		// unknown-account path as slow as a wrong password.
		s.hasher.Verify(password, decoyDigest)
		metrics.ObserveLogin("invalid_credentials")
		s.logger.Info("login attempt for unknown account", slog.String("platform", platform.Code))
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.ObserveLogin("invalid_credentials")
		s.logger.Info("login failed: wrong password",
			slog.String("user_id", user.ID),
			slog.String("platform", platform.Code),
		)
		return nil, domain.ErrInvalidCredentials
	}

	switch user.Status {
	case domain.StatusBlocked:
		metrics.ObserveLogin("blocked")
		return nil, domain.ErrAccountBlocked
	case domain.StatusPending:
		metrics.ObserveLogin("pending")
		return nil, domain.ErrAccountPending
	}

	token, err := s.tokenManager.Issue(user, platform)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.ObserveLogin("success")
	metrics.IncTokensIssued()
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("platform", platform.Code),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenManager.TTL()),
		User:      *profileOf(user, platform),
	}, nil
}

// Profile re-queries the store for the caller's live record. This is one
// of the few places that sees role/status changes made after the token was
// issued.
func (s *AuthService) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	platform, err := s.platforms.GetByID(ctx, user.PlatformID)
	if err != nil {
		return nil, err
	}
	return profileOf(user, platform), nil
}

// ChangePassword is the unprivileged self-service path: it requires the
// correct current password regardless of the caller's role.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new password are required", domain.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("user changed password", slog.String("user_id", userID))
	return nil
}

func (s *AuthService) resolveActivePlatform(ctx context.Context, code string) (*domain.Platform, error) {
	platform, err := s.platforms.GetByCode(ctx, code)
	if err != nil {
		return nil, domain.ErrPlatformNotFound
	}
	if !platform.IsActive {
		return nil, domain.ErrPlatformInactive
	}
	return platform, nil
}

func profileOf(user *domain.User, platform *domain.Platform) *UserProfile {
	return &UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		Platform: PlatformSummary{
			ID:     platform.ID,
			Code:   platform.Code,
			Name:   platform.Name,
			Domain: platform.Domain,
		},
	}
}

// decoyDigest is a bcrypt digest of a random throwaway value, used only to
// equalize timing on the unknown-account login path.
const decoyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
