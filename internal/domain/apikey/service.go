package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
)

const displayPrefixLen = len(TokenPrefix) + 8

// Service issues and authenticates API keys.
type Service struct {
	repo     Repository
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new API key service.
func NewService(repo Repository, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, activity: recorder, logger: logger}
}

// Create issues a new key. The returned token cannot be recovered later.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Issued, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	scopes := strlist.Clean(req.Scopes)
	if len(scopes) == 0 {
		scopes = strlist.List{string(ScopeRead)}
	}
	for _, scope := range scopes {
		if !validScope(scope) {
			return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, scope)
		}
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}
	key := &APIKey{
		Name:      name,
		KeyPrefix: token[:displayPrefixLen],
		Scopes:    scopes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, key, HashToken(token)); err != nil {
		return nil, fmt.Errorf("creating api key: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityAPIKey, key.ID, activity.ActionCreated, "issued api key "+name)
	return &Issued{APIKey: *key, Token: token}, nil
}

// Get fetches a key by ID.
func (s *Service) Get(ctx context.Context, id string) (*APIKey, error) {
	key, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
		}
		return nil, fmt.Errorf("getting api key: %w", err)
	}
	return key, nil
}

// List returns every key, revoked ones included.
func (s *Service) List(ctx context.Context) ([]APIKey, error) {
	return s.repo.List(ctx)
}

// Revoke disables a key. Revoking twice is a no-op.
func (s *Service) Revoke(ctx context.Context, id string) error {
	key, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if key.RevokedAt != nil {
		return nil
	}
	if err := s.repo.Revoke(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityAPIKey, id, activity.ActionRevoked, "revoked api key "+key.Name)
	return nil
}

// Authenticate resolves a bearer token to its key and records the use.
func (s *Service) Authenticate(ctx context.Context, token string) (*APIKey, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, TokenPrefix) {
		return nil, ErrUnauthorized
	}
	key, err := s.repo.GetByHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticating api key: %w", err)
	}
	if key.RevokedAt != nil {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastUsed(ctx, key.ID, now); err != nil && s.logger != nil {
		s.logger.Warn("failed to record api key use", "key_id", key.ID, "error", err)
	}
	key.LastUsedAt = &now
	return key, nil
}

// GenerateToken returns a new random token.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(buf), nil
}

// HashToken returns the stored form of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
