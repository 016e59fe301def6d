package jump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
)

// Service handles jump operations.
type Service struct {
	repo     Repository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new jump service.
func NewService(repo Repository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new jump.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Jump, error) {
	now := time.Now().UTC()
	j := &Jump{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		Price:         req.Price,
		DurationWeeks: req.DurationWeeks,
		Features:      strlist.Clean(req.Features),
		Images:        strlist.List{},
		Status:        req.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if j.Status == "" {
		j.Status = DefaultStatus
	}
	if err := s.validate(ctx, j); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("creating jump: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, j.ID, activity.ActionCreated, "created jump "+j.Name)
	return j, nil
}

// Get fetches a jump by ID.
func (s *Service) Get(ctx context.Context, id string) (*Jump, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, id, "getting jump")
	}
	return j, nil
}

// List returns jumps matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Jump, error) {
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Jump, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		j.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Category != nil {
		j.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		j.Price = *req.Price
	}
	if req.DurationWeeks != nil {
		j.DurationWeeks = *req.DurationWeeks
	}
	if req.Features != nil {
		j.Features = strlist.Clean(*req.Features)
	}
	if req.Images != nil {
		j.Images = strlist.Clean(*req.Images)
	}
	if req.Status != nil {
		j.Status = *req.Status
	}
	if err := s.validate(ctx, j); err != nil {
		return nil, err
	}
	j.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, s.mapErr(err, id, "updating jump")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, j.ID, activity.ActionUpdated, "updated jump "+j.Name)
	return j, nil
}

// Delete removes a jump. Client links go with it; projects and invoices block the deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, id, "deleting jump")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, id, activity.ActionDeleted, "deleted jump "+id)
	return nil
}

// LinkClient ensures the client is associated with the jump.
func (s *Service) LinkClient(ctx context.Context, jumpID, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if err := s.repo.LinkClient(ctx, jumpID, clientID); err != nil {
		return fmt.Errorf("linking client: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, jumpID, activity.ActionLinked, "linked client "+clientID)
	return nil
}

// UnlinkClient removes the association, if present.
func (s *Service) UnlinkClient(ctx context.Context, jumpID, clientID string) error {
	if err := s.repo.UnlinkClient(ctx, jumpID, clientID); err != nil {
		return fmt.Errorf("unlinking client: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, jumpID, activity.ActionUnlinked, "unlinked client "+clientID)
	return nil
}

// SetClients replaces the set of clients linked to the jump.
func (s *Service) SetClients(ctx context.Context, jumpID string, clientIDs []string) ([]client.Client, error) {
	ids := strlist.Clean(clientIDs)
	if _, err := s.Get(ctx, jumpID); err != nil {
		return nil, err
	}
	if err := s.repo.SetClients(ctx, jumpID, ids); err != nil {
		return nil, fmt.Errorf("setting jump clients: %w", err)
	}
	summary := fmt.Sprintf("linked %d clients", len(ids))
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, jumpID, activity.ActionLinked, summary)
	return s.repo.ListClients(ctx, jumpID)
}

// ListClients returns the clients linked to a jump.
func (s *Service) ListClients(ctx context.Context, jumpID string) ([]client.Client, error) {
	if _, err := s.Get(ctx, jumpID); err != nil {
		return nil, err
	}
	return s.repo.ListClients(ctx, jumpID)
}

// ListForClient returns the jumps linked to a client.
func (s *Service) ListForClient(ctx context.Context, clientID string) ([]Jump, error) {
	return s.repo.ListForClient(ctx, clientID)
}

// AddImage records an uploaded image filename on the jump.
func (s *Service) AddImage(ctx context.Context, jumpID, filename string) (*Jump, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: image filename is required", ErrInvalidInput)
	}
	j, err := s.repo.AddImage(ctx, jumpID, filename)
	if err != nil {
		return nil, s.mapErr(err, jumpID, "adding jump image")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityJump, jumpID, activity.ActionUploaded, "uploaded image "+filename)
	return j, nil
}

func (s *Service) validate(ctx context.Context, j *Jump) error {
	if j.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if j.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if j.DurationWeeks < 0 {
		return fmt.Errorf("%w: duration_weeks must not be negative", ErrInvalidInput)
	}
	return reference.Check(ctx, s.refs, reference.CategoryJumpStatus, j.Status)
}

func (s *Service) mapErr(err error, id, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrJumpNotFound, id)
	}
	return fmt.Errorf("%s: %w", action, err)
}
