package client

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
	"github.com/rpggio/crmdesk/internal/repository"
)

// Service handles client operations.
type Service struct {
	repo     Repository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new client service.
func NewService(repo Repository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new client.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Client, error) {
	now := time.Now().UTC()
	c := &Client{
		Name:      strings.TrimSpace(req.Name),
		Company:   strings.TrimSpace(req.Company),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   req.Address,
		Sector:    req.Sector,
		Status:    req.Status,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Sector == "" {
		c.Sector = DefaultSector
	}
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityClient, c.ID, activity.ActionCreated, "created client "+c.Name)
	return c, nil
}

// Get fetches a client by ID.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrClientNotFound, id)
		}
		return nil, fmt.Errorf("getting client: %w", err)
	}
	return c, nil
}

// List returns clients matching opts, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Client, error) {
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&c.Name, req.Name, true)
	setString(&c.Company, req.Company, true)
	setString(&c.Email, req.Email, true)
	setString(&c.Phone, req.Phone, true)
	setString(&c.Address, req.Address, false)
	setString(&c.Sector, req.Sector, true)
	setString(&c.Status, req.Status, true)
	setString(&c.Notes, req.Notes, false)
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrClientNotFound, id)
		}
		return nil, fmt.Errorf("updating client: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityClient, c.ID, activity.ActionUpdated, "updated client "+c.Name)
	return c, nil
}

// Delete removes a client. Interactions and jump links go with it; projects,
// invoices and referrals block the deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrClientNotFound, id)
		}
		return fmt.Errorf("deleting client: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityClient, id, activity.ActionDeleted, "deleted client "+id)
	return nil
}

// AddInteraction logs a contact with a client.
func (s *Service) AddInteraction(ctx context.Context, clientID string, req InteractionRequest) (*Interaction, error) {
	in := &Interaction{
		ClientID:   clientID,
		Type:       req.Type,
		Summary:    strings.TrimSpace(req.Summary),
		Details:    req.Details,
		Attachment: req.Attachment,
		CreatedAt:  time.Now().UTC(),
	}
	if in.Type == "" {
		in.Type = DefaultInteractionType
	}
	if in.Summary == "" {
		return nil, fmt.Errorf("%w: summary is required", ErrInvalidInput)
	}
	if err := reference.Check(ctx, s.refs, reference.CategoryInteractionType, in.Type); err != nil {
		return nil, err
	}
	in.OccurredAt = in.CreatedAt
	if req.OccurredAt != nil {
		in.OccurredAt = req.OccurredAt.UTC()
	}

	if err := s.repo.AddInteraction(ctx, in); err != nil {
		return nil, fmt.Errorf("adding interaction: %w", err)
	}
	summary := fmt.Sprintf("logged %s: %s", in.Type, in.Summary)
	activity.Record(ctx, s.activity, s.logger, activity.EntityClient, clientID, activity.ActionUpdated, summary)
	return in, nil
}

// ListInteractions returns a client's interactions, most recent first.
func (s *Service) ListInteractions(ctx context.Context, clientID string) ([]Interaction, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListInteractions(ctx, clientID)
}

func (s *Service) validate(ctx context.Context, c *Client) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: email %q is invalid", ErrInvalidInput, c.Email)
		}
	}
	if err := reference.Check(ctx, s.refs, reference.CategorySector, c.Sector); err != nil {
		return err
	}
	return reference.Check(ctx, s.refs, reference.CategoryClientStatus, c.Status)
}

func setString(dst *string, src *string, trim bool) {
	if src == nil {
		return
	}
	if trim {
		*dst = strings.TrimSpace(*src)
		return
	}
	*dst = *src
}
