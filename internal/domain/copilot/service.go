package copilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
)

// Service handles copilot operations.
type Service struct {
	repo     Repository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new copilot service.
func NewService(repo Repository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new copilot.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Copilot, error) {
	now := time.Now().UTC()
	c := &Copilot{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Role:        strings.TrimSpace(req.Role),
		Specialties: strlist.Clean(req.Specialties),
		HourlyRate:  req.HourlyRate,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating copilot: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityCopilot, c.ID, activity.ActionCreated, "created copilot "+c.Name)
	return c, nil
}

// Get fetches a copilot by ID.
func (s *Service) Get(ctx context.Context, id string) (*Copilot, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCopilotNotFound, id)
		}
		return nil, fmt.Errorf("getting copilot: %w", err)
	}
	return c, nil
}

// List returns copilots matching opts. Specialty matches one entry of the
// specialties array exactly.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Copilot, error) {
	opts.Specialty = strings.TrimSpace(opts.Specialty)
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Copilot, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		c.Role = strings.TrimSpace(*req.Role)
	}
	if req.Specialties != nil {
		c.Specialties = strlist.Clean(*req.Specialties)
	}
	if req.HourlyRate != nil {
		c.HourlyRate = *req.HourlyRate
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCopilotNotFound, id)
		}
		return nil, fmt.Errorf("updating copilot: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityCopilot, c.ID, activity.ActionUpdated, "updated copilot "+c.Name)
	return c, nil
}

// Delete removes a copilot along with its project assignments.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrCopilotNotFound, id)
		}
		return fmt.Errorf("deleting copilot: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityCopilot, id, activity.ActionDeleted, "deleted copilot "+id)
	return nil
}

func (s *Service) validate(ctx context.Context, c *Copilot) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: email %q is invalid", ErrInvalidInput, c.Email)
		}
	}
	if c.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly_rate must not be negative", ErrInvalidInput)
	}
	return reference.Check(ctx, s.refs, reference.CategoryCopilotStatus, c.Status)
}
