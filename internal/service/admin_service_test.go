package service

import (
	"context"
	"errors"
	"testing"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
)

func newTestAdminService() (*AdminService, *memUserRepo, *memPlatformRepo, *auth.PasswordHasher) {
	users := newMemUserRepo()
	platforms := newMemPlatformRepo()
	hasher := auth.NewPasswordHasher(4)
	authz := security.NewAuthorizationService(nil)
	return NewAdminService(users, platforms, authz, hasher, nil), users, platforms, hasher
}

func seedUser(users *memUserRepo, email, platformID string, role domain.Role, status domain.Status) *domain.User {
	u := &domain.User{Email: email, PlatformID: platformID, Role: role, Status: status}
	users.Create(context.Background(), u)
	return u
}

func TestListUsersScoping(t *testing.T) {
	s, users, platforms, _ := newTestAdminService()
	ctx := context.Background()

	dressme := platforms.addPlatform("dressme", true)
	talently := platforms.addPlatform("talently", true)
	seedUser(users, "a@dressme", dressme.ID, domain.RoleUser, domain.StatusActive)
	seedUser(users, "b@dressme", dressme.ID, domain.RoleAdmin, domain.StatusActive)
	seedUser(users, "c@talently", talently.ID, domain.RoleUser, domain.StatusActive)

	admin := security.Caller{UserID: "a-1", Role: domain.RoleAdmin, PlatformID: dressme.ID}
	sa := security.Caller{UserID: "sa-1", Role: domain.RoleSuperAdmin, PlatformID: dressme.ID}

	// Admin sees its own platform only, even with a foreign filter.
	views, err := s.ListUsers(ctx, admin, "talently")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 users for admin, got %d", len(views))
	}
	for _, v := range views {
		if v.Platform.Code != "dressme" {
			t.Fatalf("admin listing leaked platform %s", v.Platform.Code)
		}
	}

	// Super admin sees everything by default.
	views, err = s.ListUsers(ctx, sa, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 users for super admin, got %d", len(views))
	}

	// Super admin may narrow by code; an unknown code leaves it unfiltered.
	views, _ = s.ListUsers(ctx, sa, "talently")
	if len(views) != 1 || views[0].Platform.Code != "talently" {
		t.Fatalf("expected 1 talently user, got %d", len(views))
	}
	views, _ = s.ListUsers(ctx, sa, "no-such-code")
	if len(views) != 3 {
		t.Fatalf("expected unknown filter to be ignored, got %d users", len(views))
	}

	// Plain users are rejected.
	user := security.Caller{UserID: "u-1", Role: domain.RoleUser, PlatformID: dressme.ID}
	if _, err := s.ListUsers(ctx, user, ""); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}
}

func TestAdminCreateUser(t *testing.T) {
	s, _, platforms, _ := newTestAdminService()
	ctx := context.Background()

	dressme := platforms.addPlatform("dressme", true)
	talently := platforms.addPlatform("talently", true)
	admin := security.Caller{UserID: "a-1", Role: domain.RoleAdmin, PlatformID: dressme.ID}
	sa := security.Caller{UserID: "sa-1", Role: domain.RoleSuperAdmin, PlatformID: dressme.ID}

	// Defaults: role USER, status ACTIVE (no pending gate on admin creation).
	view, err := s.CreateUser(ctx, admin, CreateUserInput{Email: "new@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.Role != domain.RoleUser || view.Status != domain.StatusActive {
		t.Fatalf("expected USER/ACTIVE defaults, got %s/%s", view.Role, view.Status)
	}
	if view.Platform.ID != dressme.ID {
		t.Fatalf("expected admin's own platform, got %s", view.Platform.ID)
	}

	// Admin is pinned to its platform: the code is ignored for non-SA.
	view, err = s.CreateUser(ctx, admin, CreateUserInput{
		Email: "pinned@example.com", Password: "Password123", PlatformCode: "talently",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.Platform.ID != dressme.ID {
		t.Fatalf("expected pinned platform, got %s", view.Platform.ID)
	}

	// Super admin may target any platform by code.
	view, err = s.CreateUser(ctx, sa, CreateUserInput{
		Email: "remote@example.com", Password: "Password123", PlatformCode: "talently",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.Platform.ID != talently.ID {
		t.Fatalf("expected talently, got %s", view.Platform.ID)
	}

	// Duplicate identity
	if _, err := s.CreateUser(ctx, admin, CreateUserInput{Email: "new@example.com", Password: "Password123"}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	// Admin may not mint a super admin.
	if _, err := s.CreateUser(ctx, admin, CreateUserInput{
		Email: "boss@example.com", Password: "Password123", Role: domain.RoleSuperAdmin,
	}); !errors.Is(err, domain.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}

	// Short password
	if _, err := s.CreateUser(ctx, admin, CreateUserInput{Email: "x@example.com", Password: "123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAdminUpdateUser(t *testing.T) {
	s, users, platforms, _ := newTestAdminService()
	ctx := context.Background()

	dressme := platforms.addPlatform("dressme", true)
	pending := seedUser(users, "p@dressme", dressme.ID, domain.RoleUser, domain.StatusPending)
	admin := security.Caller{UserID: "a-1", Role: domain.RoleAdmin, PlatformID: dressme.ID}

	// The approval flow: PENDING -> ACTIVE.
	active := domain.StatusActive
	view, err := s.UpdateUser(ctx, admin, pending.ID, domain.UserUpdate{Status: &active})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if view.Status != domain.StatusActive {
		t.Fatalf("expected ACTIVE, got %s", view.Status)
	}

	// Unknown target
	if _, err := s.UpdateUser(ctx, admin, "no-such-id", domain.UserUpdate{Status: &active}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Policy violations propagate unchanged.
	adminUser := seedUser(users, "self@dressme", dressme.ID, domain.RoleAdmin, domain.StatusActive)
	self := security.Caller{UserID: adminUser.ID, Role: domain.RoleAdmin, PlatformID: dressme.ID}
	blocked := domain.StatusBlocked
	if _, err := s.UpdateUser(ctx, self, adminUser.ID, domain.UserUpdate{Status: &blocked}); !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction, got %v", err)
	}
}

func TestAdminResetPassword(t *testing.T) {
	s, users, platforms, hasher := newTestAdminService()
	ctx := context.Background()

	dressme := platforms.addPlatform("dressme", true)
	target := seedUser(users, "t@dressme", dressme.ID, domain.RoleUser, domain.StatusActive)
	admin := security.Caller{UserID: "a-1", Role: domain.RoleAdmin, PlatformID: dressme.ID}

	if err := s.ResetPassword(ctx, admin, target.ID, "123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}

	if err := s.ResetPassword(ctx, admin, target.ID, "FreshPass123"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	stored, _ := users.GetByID(ctx, target.ID)
	if !hasher.Verify("FreshPass123", stored.PasswordHash) {
		t.Fatalf("expected stored hash to match new password")
	}

	// Cross-platform reset by a plain admin is refused.
	other := platforms.addPlatform("talently", true)
	foreign := seedUser(users, "f@talently", other.ID, domain.RoleUser, domain.StatusActive)
	if err := s.ResetPassword(ctx, admin, foreign.ID, "FreshPass123"); !errors.Is(err, domain.ErrTenantIsolation) {
		t.Fatalf("expected ErrTenantIsolation, got %v", err)
	}
}
