package security

import (
	"errors"
	"testing"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

var (
	superAdmin = Caller{UserID: "sa-1", Role: domain.RoleSuperAdmin, PlatformID: "p-master"}
	admin      = Caller{UserID: "a-1", Role: domain.RoleAdmin, PlatformID: "p-1"}
	user       = Caller{UserID: "u-1", Role: domain.RoleUser, PlatformID: "p-1"}
)

func rolePtr(r domain.Role) *domain.Role       { return &r }
func statusPtr(s domain.Status) *domain.Status { return &s }

func TestRequireAdmin(t *testing.T) {
	as := NewAuthorizationService(nil)

	if err := as.RequireAdmin(admin); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := as.RequireAdmin(superAdmin); err != nil {
		t.Fatalf("super admin should pass: %v", err)
	}
	if err := as.RequireAdmin(user); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for user, got %v", err)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	as := NewAuthorizationService(nil)

	if err := as.RequireSuperAdmin(superAdmin); err != nil {
		t.Fatalf("super admin should pass: %v", err)
	}
	if err := as.RequireSuperAdmin(admin); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for admin, got %v", err)
	}
}

func TestUserListScope(t *testing.T) {
	as := NewAuthorizationService(nil)

	// Admin is pinned to its own platform even when it asks for another.
	filter, err := as.UserListScope(admin, "p-other")
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if filter.PlatformID != "p-1" {
		t.Fatalf("expected admin pinned to p-1, got %s", filter.PlatformID)
	}

	// Super admin sees everything by default and may narrow.
	filter, err = as.UserListScope(superAdmin, "")
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if filter.PlatformID != "" {
		t.Fatalf("expected unscoped filter, got %s", filter.PlatformID)
	}
	filter, _ = as.UserListScope(superAdmin, "p-2")
	if filter.PlatformID != "p-2" {
		t.Fatalf("expected narrowed filter p-2, got %s", filter.PlatformID)
	}

	if _, err := as.UserListScope(user, ""); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for user, got %v", err)
	}
}

func TestAuthorizeUserUpdate(t *testing.T) {
	as := NewAuthorizationService(nil)
	target := &domain.User{ID: "t-1", Role: domain.RoleUser, Status: domain.StatusPending, PlatformID: "p-1"}

	// Plain status activation by a same-platform admin.
	if err := as.AuthorizeUserUpdate(admin, target, domain.UserUpdate{Status: statusPtr(domain.StatusActive)}); err != nil {
		t.Fatalf("activation should pass: %v", err)
	}

	// Empty update
	if err := as.AuthorizeUserUpdate(admin, target, domain.UserUpdate{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty update, got %v", err)
	}

	// Unknown status
	bad := domain.Status("FROZEN")
	if err := as.AuthorizeUserUpdate(admin, target, domain.UserUpdate{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}

	// Unknown role
	badRole := domain.Role("OWNER")
	if err := as.AuthorizeUserUpdate(admin, target, domain.UserUpdate{Role: &badRole}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
}

func TestEscalationGuard(t *testing.T) {
	as := NewAuthorizationService(nil)
	target := &domain.User{ID: "t-1", Role: domain.RoleUser, PlatformID: "p-1"}

	// Admin may not grant SUPER_ADMIN.
	err := as.AuthorizeUserUpdate(admin, target, domain.UserUpdate{Role: rolePtr(domain.RoleSuperAdmin)})
	if !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for escalation, got %v", err)
	}

	// Super admin may.
	if err := as.AuthorizeUserUpdate(superAdmin, target, domain.UserUpdate{Role: rolePtr(domain.RoleSuperAdmin)}); err != nil {
		t.Fatalf("super admin grant should pass: %v", err)
	}

	// Same rule on create.
	if err := as.AuthorizeUserCreate(admin, domain.RoleSuperAdmin, domain.StatusActive); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden on create escalation, got %v", err)
	}
	if err := as.AuthorizeUserCreate(superAdmin, domain.RoleSuperAdmin, domain.StatusActive); err != nil {
		t.Fatalf("super admin create should pass: %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	as := NewAuthorizationService(nil)
	foreign := &domain.User{ID: "t-2", Role: domain.RoleUser, PlatformID: "p-other"}
	upd := domain.UserUpdate{Status: statusPtr(domain.StatusActive)}

	if err := as.AuthorizeUserUpdate(admin, foreign, upd); !errors.Is(err, domain.ErrTenantIsolation) {
		t.Fatalf("expected ErrTenantIsolation, got %v", err)
	}
	if err := as.AuthorizeUserView(admin, foreign); !errors.Is(err, domain.ErrTenantIsolation) {
		t.Fatalf("expected ErrTenantIsolation on view, got %v", err)
	}
	if err := as.AuthorizePasswordReset(admin, foreign); !errors.Is(err, domain.ErrTenantIsolation) {
		t.Fatalf("expected ErrTenantIsolation on reset, got %v", err)
	}

	// Super admin crosses platforms freely.
	if err := as.AuthorizeUserUpdate(superAdmin, foreign, upd); err != nil {
		t.Fatalf("super admin update should pass: %v", err)
	}
	if err := as.AuthorizePasswordReset(superAdmin, foreign); err != nil {
		t.Fatalf("super admin reset should pass: %v", err)
	}
}

func TestSuperAdminTargetProtection(t *testing.T) {
	as := NewAuthorizationService(nil)
	saTarget := &domain.User{ID: "t-3", Role: domain.RoleSuperAdmin, PlatformID: "p-1"}
	upd := domain.UserUpdate{Status: statusPtr(domain.StatusBlocked)}

	// Admin may not touch a super admin even on its own platform.
	if err := as.AuthorizeUserUpdate(admin, saTarget, upd); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}
	if err := as.AuthorizeUserView(admin, saTarget); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden on view, got %v", err)
	}
	if err := as.AuthorizePasswordReset(admin, saTarget); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden on reset, got %v", err)
	}

	if err := as.AuthorizeUserUpdate(superAdmin, saTarget, upd); err != nil {
		t.Fatalf("super admin should manage super admins: %v", err)
	}
}

func TestSelfGuards(t *testing.T) {
	as := NewAuthorizationService(nil)
	self := &domain.User{ID: admin.UserID, Role: domain.RoleAdmin, PlatformID: "p-1"}

	// Self-demotion to USER
	err := as.AuthorizeUserUpdate(admin, self, domain.UserUpdate{Role: rolePtr(domain.RoleUser)})
	if !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction on self-demotion, got %v", err)
	}

	// Self-block
	err = as.AuthorizeUserUpdate(admin, self, domain.UserUpdate{Status: statusPtr(domain.StatusBlocked)})
	if !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction on self-block, got %v", err)
	}

	// Keeping an admin role on self is fine.
	if err := as.AuthorizeUserUpdate(admin, self, domain.UserUpdate{Role: rolePtr(domain.RoleAdmin)}); err != nil {
		t.Fatalf("lateral self role change should pass: %v", err)
	}

	// The guards bind super admins too.
	saSelf := &domain.User{ID: superAdmin.UserID, Role: domain.RoleSuperAdmin, PlatformID: "p-master"}
	err = as.AuthorizeUserUpdate(superAdmin, saSelf, domain.UserUpdate{Status: statusPtr(domain.StatusBlocked)})
	if !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction for super admin self-block, got %v", err)
	}
}

func TestAllowedRoles(t *testing.T) {
	as := NewAuthorizationService(nil)

	if got := as.AllowedRoles(admin); len(got) != 2 {
		t.Fatalf("expected 2 assignable roles for admin, got %d", len(got))
	}
	if got := as.AllowedRoles(superAdmin); len(got) != 3 {
		t.Fatalf("expected 3 assignable roles for super admin, got %d", len(got))
	}
}
