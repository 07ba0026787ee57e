package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
)

// AdminUserView is the admin-facing projection of a user record.
type AdminUserView struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"fullName,omitempty"`
	Role      domain.Role     `json:"role"`
	Status    domain.Status   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Platform  PlatformSummary `json:"platform"`
}

// CreateUserInput is the admin user-creation request. PlatformCode is
// honored only for SUPER_ADMIN; an ADMIN always creates inside its own
// platform.
type CreateUserInput struct {
	Email        string
	Password     string
	FullName     string
	Role         domain.Role   // defaults to USER
	Status       domain.Status // defaults to ACTIVE, bypassing the pending gate
	PlatformCode string
}

// AdminService is the privileged user-management surface. Every operation
// re-queries the store for the target and runs the policy engine before
// touching anything, so stale token claims about the target are never
// trusted.
type AdminService struct {
	users     domain.UserRepository
	platforms domain.PlatformRepository
	authz     *security.AuthorizationService
	hasher    *auth.PasswordHasher
	logger    *slog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	users domain.UserRepository,
	platforms domain.PlatformRepository,
	authz *security.AuthorizationService,
	hasher *auth.PasswordHasher,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		users:     users,
		platforms: platforms,
		authz:     authz,
		hasher:    hasher,
		logger:    logger,
	}
}

// ListUsers returns users visible to the caller. ADMIN is pinned to its
// own platform; SUPER_ADMIN sees all platforms and may narrow by platform
// code. An unknown filter code leaves the listing unfiltered, matching the
// lenient behavior of the admin UI.
func (s *AdminService) ListUsers(ctx context.Context, caller security.Caller, platformCodeFilter string) ([]*AdminUserView, error) {
	requestedPlatformID := ""
	if caller.IsSuperAdmin() && platformCodeFilter != "" {
		if platform, err := s.platforms.GetByCode(ctx, platformCodeFilter); err == nil {
			requestedPlatformID = platform.ID
		}
	}

	filter, err := s.authz.UserListScope(caller, requestedPlatformID)
	if err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*AdminUserView, 0, len(users))
	byID := map[string]*domain.Platform{}
	for _, u := range users {
		platform, ok := byID[u.PlatformID]
		if !ok {
			platform, err = s.platforms.GetByID(ctx, u.PlatformID)
			if err != nil {
				return nil, err
			}
			byID[u.PlatformID] = platform
		}
		views = append(views, adminViewOf(u, platform))
	}
	return views, nil
}

// CreateUser creates an account directly, bypassing signup. Unlike signup
// the account defaults to ACTIVE, and role/status may be supplied within
// the caller's allowed set.
func (s *AdminService) CreateUser(ctx context.Context, caller security.Caller, input CreateUserInput) (*AdminUserView, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	status := input.Status
	if status == "" {
		status = domain.StatusActive
	}
	if err := s.authz.AuthorizeUserCreate(caller, role, status); err != nil {
		return nil, err
	}

	var platform *domain.Platform
	var err error
	if caller.IsSuperAdmin() && input.PlatformCode != "" {
		platform, err = s.platforms.GetByCode(ctx, input.PlatformCode)
		if err != nil {
			return nil, domain.ErrPlatformNotFound
		}
	} else {
		platform, err = s.platforms.GetByID(ctx, caller.PlatformID)
		if err != nil {
			return nil, err
		}
	}

	if existing, err := s.users.GetByEmailAndPlatform(ctx, input.Email, platform.ID); err == nil && existing != nil {
		return nil, domain.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         role,
		Status:       status,
		PlatformID:   platform.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("admin created user",
		slog.String("admin_id", caller.UserID),
		slog.String("user_id", user.ID),
		slog.String("platform", platform.Code),
		slog.String("role", string(user.Role)),
	)
	return adminViewOf(user, platform), nil
}

// UpdateUser applies a status/role mutation to the target, gated by the
// policy engine.
func (s *AdminService) UpdateUser(ctx context.Context, caller security.Caller, targetID string, upd domain.UserUpdate) (*AdminUserView, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeUserUpdate(caller, target, upd); err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, targetID, upd)
	if err != nil {
		return nil, err
	}
	platform, err := s.platforms.GetByID(ctx, updated.PlatformID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin updated user",
		slog.String("admin_id", caller.UserID),
		slog.String("user_id", updated.ID),
		slog.String("role", string(updated.Role)),
		slog.String("status", string(updated.Status)),
	)
	return adminViewOf(updated, platform), nil
}

// ResetPassword overwrites the target's password, gated by the same
// isolation and super-admin protection as user mutation.
func (s *AdminService) ResetPassword(ctx context.Context, caller security.Caller, targetID, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizePasswordReset(caller, target); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, targetID, hash); err != nil {
		return err
	}

	s.logger.Info("admin reset user password",
		slog.String("admin_id", caller.UserID),
		slog.String("user_id", targetID),
	)
	return nil
}

func adminViewOf(user *domain.User, platform *domain.Platform) *AdminUserView {
	return &AdminUserView{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Platform: PlatformSummary{
			ID:   platform.ID,
			Code: platform.Code,
			Name: platform.Name,
		},
	}
}
