package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
)

type memUserRepo struct {
	byID map[string]*domain.User
	seq  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email && existing.PlatformID == u.PlatformID {
			return domain.ErrDuplicateIdentity
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmailAndPlatform(_ context.Context, email, platformID string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email && u.PlatformID == platformID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUserRepo) UpdateAPIKey(_ context.Context, id, apiKey string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.APIKey = apiKey
	return nil
}

func (m *memUserRepo) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if filter.PlatformID != "" && u.PlatformID != filter.PlatformID {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) CountByPlatform(_ context.Context, platformID string) (int, error) {
	n := 0
	for _, u := range m.byID {
		if u.PlatformID == platformID {
			n++
		}
	}
	return n, nil
}

type memPlatformRepo struct {
	byID map[string]*domain.Platform
	seq  int
}

func newMemPlatformRepo() *memPlatformRepo {
	return &memPlatformRepo{byID: map[string]*domain.Platform{}}
}

func (m *memPlatformRepo) addPlatform(code string, active bool) *domain.Platform {
	p := &domain.Platform{Code: code, Name: code, IsActive: active}
	m.Create(context.Background(), p)
	return p
}

func (m *memPlatformRepo) Create(_ context.Context, p *domain.Platform) error {
	for _, existing := range m.byID {
		if existing.Code == p.Code {
			return domain.ErrDuplicateCode
		}
	}
	m.seq++
	p.ID = fmt.Sprintf("p-%d", m.seq)
	p.IsMaster = false
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return nil
}

func (m *memPlatformRepo) GetByID(_ context.Context, id string) (*domain.Platform, error) {
	if p, ok := m.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrPlatformNotFound
}

func (m *memPlatformRepo) GetByCode(_ context.Context, code string) (*domain.Platform, error) {
	for _, p := range m.byID {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrPlatformNotFound
}

func (m *memPlatformRepo) Update(_ context.Context, id string, upd domain.PlatformUpdate) (*domain.Platform, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrPlatformNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Domain != nil {
		p.Domain = *upd.Domain
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (m *memPlatformRepo) ListActive(_ context.Context) ([]*domain.Platform, error) {
	out := []*domain.Platform{}
	for _, p := range m.byID {
		if p.IsActive {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memPlatformRepo) ListWithUserCounts(_ context.Context) ([]*domain.PlatformWithCount, error) {
	out := []*domain.PlatformWithCount{}
	for _, p := range m.byID {
		out = append(out, &domain.PlatformWithCount{Platform: *p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memPlatformRepo) SetMaster(_ context.Context, id string) (*domain.Platform, error) {
	target, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrPlatformNotFound
	}
	for _, p := range m.byID {
		p.IsMaster = false
	}
	target.IsMaster = true
	target.IsActive = true
	copied := *target
	return &copied, nil
}

func newTestAuthService() (*AuthService, *memUserRepo, *memPlatformRepo) {
	users := newMemUserRepo()
	platforms := newMemPlatformRepo()
	tm := auth.NewTokenManager("test-secret", "", time.Hour)
	hasher := auth.NewPasswordHasher(4)
	return NewAuthService(users, platforms, tm, hasher, nil), users, platforms
}

func TestSignup(t *testing.T) {
	s, _, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	ctx := context.Background()

	profile, err := s.Signup(ctx, "alice@example.com", "Password123", "Alice", "dressme")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if profile.Status != domain.StatusPending {
		t.Fatalf("expected PENDING status, got %s", profile.Status)
	}
	if profile.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", profile.Role)
	}
	if profile.Platform.Code != "dressme" {
		t.Fatalf("expected platform dressme, got %s", profile.Platform.Code)
	}

	// Duplicate on the same platform
	if _, err := s.Signup(ctx, "alice@example.com", "Password123", "", "dressme"); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	// Same email on a different platform is a distinct account
	platforms.addPlatform("talently", true)
	if _, err := s.Signup(ctx, "alice@example.com", "Password123", "", "talently"); err != nil {
		t.Fatalf("cross-platform signup failed: %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	s, _, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	platforms.addPlatform("legacy", false)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		platform string
		want     error
	}{
		{"missing email", "", "Password123", "dressme", domain.ErrValidation},
		{"missing password", "a@b.com", "", "dressme", domain.ErrValidation},
		{"missing platform", "a@b.com", "Password123", "", domain.ErrValidation},
		{"short password", "a@b.com", "12345", "dressme", domain.ErrValidation},
		{"unknown platform", "a@b.com", "Password123", "nope", domain.ErrPlatformNotFound},
		{"inactive platform", "a@b.com", "Password123", "legacy", domain.ErrPlatformInactive},
	}
	for _, tc := range cases {
		if _, err := s.Signup(ctx, tc.email, tc.password, "", tc.platform); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestLoginLifecycle(t *testing.T) {
	s, users, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	ctx := context.Background()

	profile, err := s.Signup(ctx, "bob@example.com", "Password123", "Bob", "dressme")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	// Pending accounts cannot log in.
	if _, err := s.Login(ctx, "bob@example.com", "Password123", "dressme"); !errors.Is(err, domain.ErrAccountPending) {
		t.Fatalf("expected ErrAccountPending, got %v", err)
	}

	// Activate and log in.
	active := domain.StatusActive
	if _, err := users.Update(ctx, profile.ID, domain.UserUpdate{Status: &active}); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	result, err := s.Login(ctx, "bob@example.com", "Password123", "dressme")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token on login")
	}
	if result.User.Status != domain.StatusActive {
		t.Fatalf("expected ACTIVE profile, got %s", result.User.Status)
	}

	// The token carries identity, role, and platform.
	tm := auth.NewTokenManager("test-secret", "", time.Hour)
	claims, err := tm.Verify(result.Token)
	if err != nil {
		t.Fatalf("token verify failed: %v", err)
	}
	if claims.UserID != profile.ID || claims.Role != domain.RoleUser || claims.PlatformCode != "dressme" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Blocked accounts are refused.
	blocked := domain.StatusBlocked
	users.Update(ctx, profile.ID, domain.UserUpdate{Status: &blocked})
	if _, err := s.Login(ctx, "bob@example.com", "Password123", "dressme"); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s, users, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	ctx := context.Background()

	profile, _ := s.Signup(ctx, "carol@example.com", "Password123", "", "dressme")
	active := domain.StatusActive
	users.Update(ctx, profile.ID, domain.UserUpdate{Status: &active})

	// Wrong password and unknown account yield the same error.
	_, wrongPass := s.Login(ctx, "carol@example.com", "WrongPass", "dressme")
	_, unknown := s.Login(ctx, "nobody@example.com", "Password123", "dressme")
	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown account, got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("credential errors must be indistinguishable: %q vs %q", wrongPass, unknown)
	}
}

func TestLoginScopedToPlatform(t *testing.T) {
	s, users, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	platforms.addPlatform("talently", true)
	ctx := context.Background()

	profile, _ := s.Signup(ctx, "dave@example.com", "Password123", "", "dressme")
	active := domain.StatusActive
	users.Update(ctx, profile.ID, domain.UserUpdate{Status: &active})

	// Correct credentials against the wrong platform do not authenticate.
	if _, err := s.Login(ctx, "dave@example.com", "Password123", "talently"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login(ctx, "dave@example.com", "Password123", "dressme"); err != nil {
		t.Fatalf("login on home platform failed: %v", err)
	}
}

func TestProfileSeesLiveState(t *testing.T) {
	s, users, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	ctx := context.Background()

	profile, _ := s.Signup(ctx, "erin@example.com", "Password123", "", "dressme")

	adminRole := domain.RoleAdmin
	active := domain.StatusActive
	users.Update(ctx, profile.ID, domain.UserUpdate{Role: &adminRole, Status: &active})

	fresh, err := s.Profile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if fresh.Role != domain.RoleAdmin || fresh.Status != domain.StatusActive {
		t.Fatalf("expected live role/status, got %s/%s", fresh.Role, fresh.Status)
	}
}

func TestChangePassword(t *testing.T) {
	s, users, platforms := newTestAuthService()
	platforms.addPlatform("dressme", true)
	ctx := context.Background()

	profile, _ := s.Signup(ctx, "frank@example.com", "OldPass123", "", "dressme")
	active := domain.StatusActive
	users.Update(ctx, profile.ID, domain.UserUpdate{Status: &active})

	// Wrong current password
	if err := s.ChangePassword(ctx, profile.ID, "bad", "NewPass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// Too short
	if err := s.ChangePassword(ctx, profile.ID, "OldPass123", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// Good change
	if err := s.ChangePassword(ctx, profile.ID, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	// Old password no longer works, new one does.
	if _, err := s.Login(ctx, "frank@example.com", "OldPass123", "dressme"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	if _, err := s.Login(ctx, "frank@example.com", "NewPass123", "dressme"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
