package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.EntityType == "" || strings.TrimSpace(entry.EntityID) == "" || entry.Action == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.Limit > maxLimit {
		opts.Limit = maxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, opts)
}

// Record appends an entry through r. Failures are logged, never returned.
func Record(ctx context.Context, r Recorder, logger *slog.Logger, entityType EntityType, entityID string, action Action, summary string) {
	if r == nil {
		return
	}
	err := r.LogActivity(ctx, &Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Summary:    summary,
	})
	if err != nil && logger != nil {
		logger.Warn("failed to record activity", "entity_type", entityType, "entity_id", entityID, "action", action, "error", err)
	}
}
