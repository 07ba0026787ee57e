package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// APIKeyStatus reports whether the caller has a stored key and returns it.
type APIKeyStatus struct {
	HasAPIKey bool   `json:"hasApiKey"`
	APIKey    string `json:"apiKey,omitempty"`
}

// APIKeyService manages the per-user opaque API key. Strictly
// self-service: a caller can only ever touch its own key.
type APIKeyService struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(users domain.UserRepository, logger *slog.Logger) *APIKeyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyService{users: users, logger: logger}
}

// Get returns the caller's stored key, if any.
func (s *APIKeyService) Get(ctx context.Context, userID string) (*APIKeyStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &APIKeyStatus{HasAPIKey: user.APIKey != "", APIKey: user.APIKey}, nil
}

// Set stores or replaces the caller's key.
func (s *APIKeyService) Set(ctx context.Context, userID, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: api key is required", domain.ErrValidation)
	}
	if err := s.users.UpdateAPIKey(ctx, userID, apiKey); err != nil {
		return err
	}
	s.logger.Info("user stored api key", slog.String("user_id", userID))
	return nil
}

// Delete removes the caller's key.
func (s *APIKeyService) Delete(ctx context.Context, userID string) error {
	if err := s.users.UpdateAPIKey(ctx, userID, ""); err != nil {
		return err
	}
	s.logger.Info("user removed api key", slog.String("user_id", userID))
	return nil
}
