package security

import (
	"fmt"
	"log/slog"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// Caller is the verified identity behind a request, derived from token
// claims. The policy engine only ever sees this triple; it never touches
// storage itself.
type Caller struct {
	UserID     string
	Role       domain.Role
	PlatformID string
}

// IsSuperAdmin reports whether the caller has cross-platform authority.
func (c Caller) IsSuperAdmin() bool {
	return c.Role == domain.RoleSuperAdmin
}

// AuthorizationService is the stateless policy engine. Every admin-facing
// mutation and read goes through one of its decision methods; storage and
// transport never enforce policy on their own.
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// RequireAdmin rejects callers below ADMIN.
func (as *AuthorizationService) RequireAdmin(caller Caller) error {
	if !caller.Role.IsAdmin() {
		as.deny(caller, "admin_required", "")
		return fmt.Errorf("%w: admin access required", domain.ErrRoleForbidden)
	}
	return nil
}

// RequireSuperAdmin rejects everyone except SUPER_ADMIN. Platform
// creation, platform mutation, and the all-platforms listing go through
// this gate.
func (as *AuthorizationService) RequireSuperAdmin(caller Caller) error {
	if !caller.IsSuperAdmin() {
		as.deny(caller, "super_admin_required", "")
		return fmt.Errorf("%w: super admin access required", domain.ErrRoleForbidden)
	}
	return nil
}

// AllowedRoles returns the set of roles the caller may assign to others.
func (as *AuthorizationService) AllowedRoles(caller Caller) []domain.Role {
	if caller.IsSuperAdmin() {
		return []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin}
	}
	return []domain.Role{domain.RoleUser, domain.RoleAdmin}
}

// UserListScope resolves the platform filter for a user listing. ADMIN is
// pinned to its own platform regardless of the requested filter;
// SUPER_ADMIN sees everything unless it explicitly narrows the scope.
func (as *AuthorizationService) UserListScope(caller Caller, requestedPlatformID string) (domain.UserFilter, error) {
	if err := as.RequireAdmin(caller); err != nil {
		return domain.UserFilter{}, err
	}
	if caller.IsSuperAdmin() {
		return domain.UserFilter{PlatformID: requestedPlatformID}, nil
	}
	return domain.UserFilter{PlatformID: caller.PlatformID}, nil
}

// AuthorizeUserView decides whether the caller may read the target's
// record. Only SUPER_ADMIN may see other SUPER_ADMIN accounts.
func (as *AuthorizationService) AuthorizeUserView(caller Caller, target *domain.User) error {
	if err := as.RequireAdmin(caller); err != nil {
		return err
	}
	if !caller.IsSuperAdmin() {
		if target.PlatformID != caller.PlatformID {
			as.deny(caller, "cross_platform_view", target.ID)
			return fmt.Errorf("%w: cannot view users of another platform", domain.ErrTenantIsolation)
		}
		if target.Role == domain.RoleSuperAdmin {
			as.deny(caller, "super_admin_target", target.ID)
			return fmt.Errorf("%w: only super admins may manage super admin accounts", domain.ErrRoleForbidden)
		}
	}
	return nil
}

// AuthorizeUserUpdate decides whether the caller may apply upd to target.
// Encodes the mutation whitelist, tenant isolation, the role-escalation
// guard, and the self-action guards.
func (as *AuthorizationService) AuthorizeUserUpdate(caller Caller, target *domain.User, upd domain.UserUpdate) error {
	if err := as.RequireAdmin(caller); err != nil {
		return err
	}
	if upd.Empty() {
		return fmt.Errorf("%w: status or role is required", domain.ErrValidation)
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return fmt.Errorf("%w: status invalid, use: PENDING, ACTIVE or BLOCKED", domain.ErrValidation)
	}
	if upd.Role != nil {
		if err := as.checkAssignableRole(caller, *upd.Role); err != nil {
			return err
		}
	}
	if !caller.IsSuperAdmin() {
		if target.PlatformID != caller.PlatformID {
			as.deny(caller, "cross_platform_update", target.ID)
			return fmt.Errorf("%w: cannot edit users of another platform", domain.ErrTenantIsolation)
		}
		if target.Role == domain.RoleSuperAdmin {
			as.deny(caller, "super_admin_target", target.ID)
			return fmt.Errorf("%w: only super admins may manage super admin accounts", domain.ErrRoleForbidden)
		}
	}
	if caller.UserID == target.ID {
		if upd.Role != nil && !upd.Role.IsAdmin() {
			as.deny(caller, "self_demotion", target.ID)
			return fmt.Errorf("%w: cannot remove your own admin privilege", domain.ErrSelfAction)
		}
		if upd.Status != nil && *upd.Status == domain.StatusBlocked {
			as.deny(caller, "self_block", target.ID)
			return fmt.Errorf("%w: cannot block your own account", domain.ErrSelfAction)
		}
	}
	return nil
}

// AuthorizeUserCreate decides whether the caller may create a user with
// the requested role and status. Platform targeting is resolved by the
// service: ADMIN always creates inside its own platform.
func (as *AuthorizationService) AuthorizeUserCreate(caller Caller, role domain.Role, status domain.Status) error {
	if err := as.RequireAdmin(caller); err != nil {
		return err
	}
	if err := as.checkAssignableRole(caller, role); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status invalid, use: PENDING, ACTIVE or BLOCKED", domain.ErrValidation)
	}
	return nil
}

// AuthorizePasswordReset decides whether the caller may reset the
// target's password. Same isolation and super-admin protection as user
// mutation.
func (as *AuthorizationService) AuthorizePasswordReset(caller Caller, target *domain.User) error {
	if err := as.RequireAdmin(caller); err != nil {
		return err
	}
	if !caller.IsSuperAdmin() {
		if target.PlatformID != caller.PlatformID {
			as.deny(caller, "cross_platform_reset", target.ID)
			return fmt.Errorf("%w: cannot reset passwords of another platform", domain.ErrTenantIsolation)
		}
		if target.Role == domain.RoleSuperAdmin {
			as.deny(caller, "super_admin_target", target.ID)
			return fmt.Errorf("%w: only super admins may reset super admin passwords", domain.ErrRoleForbidden)
		}
	}
	return nil
}

// checkAssignableRole rejects unknown roles and blocks non-super-admins
// from handing out SUPER_ADMIN.
func (as *AuthorizationService) checkAssignableRole(caller Caller, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: role invalid, use: USER, ADMIN", domain.ErrValidation)
	}
	if role == domain.RoleSuperAdmin && !caller.IsSuperAdmin() {
		as.deny(caller, "escalation_attempt", "")
		return fmt.Errorf("%w: only super admins may grant the super admin role", domain.ErrRoleForbidden)
	}
	return nil
}

func (as *AuthorizationService) deny(caller Caller, reason, targetID string) {
	as.logger.Warn("authorization denied",
		slog.String("caller_id", caller.UserID),
		slog.String("caller_role", string(caller.Role)),
		slog.String("reason", reason),
		slog.String("target_id", targetID),
	)
}
