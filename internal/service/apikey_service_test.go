package service

import (
	"context"
	"errors"
	"testing"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

func TestAPIKeyLifecycle(t *testing.T) {
	users := newMemUserRepo()
	s := NewAPIKeyService(users, nil)
	ctx := context.Background()

	u := seedUser(users, "alice@example.com", "p-1", domain.RoleUser, domain.StatusActive)

	status, err := s.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if status.HasAPIKey || status.APIKey != "" {
		t.Fatalf("expected no key initially, got %+v", status)
	}

	if err := s.Set(ctx, u.ID, "sk-gemini-test"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	status, _ = s.Get(ctx, u.ID)
	if !status.HasAPIKey || status.APIKey != "sk-gemini-test" {
		t.Fatalf("expected stored key, got %+v", status)
	}

	if err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	status, _ = s.Get(ctx, u.ID)
	if status.HasAPIKey {
		t.Fatalf("expected key removed, got %+v", status)
	}
}

func TestAPIKeyValidation(t *testing.T) {
	users := newMemUserRepo()
	s := NewAPIKeyService(users, nil)
	ctx := context.Background()

	u := seedUser(users, "bob@example.com", "p-1", domain.RoleUser, domain.StatusActive)

	if err := s.Set(ctx, u.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty key, got %v", err)
	}
	if _, err := s.Get(ctx, "no-such-user"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
