package referral

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
	"github.com/rpggio/crmdesk/internal/repository"
)

// Service handles referral operations.
type Service struct {
	repo     Repository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new referral service.
func NewService(repo Repository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new referral.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Referral, error) {
	now := time.Now().UTC()
	ref := &Referral{
		ReferrerClientID: strings.TrimSpace(req.ReferrerClientID),
		ReferredName:     strings.TrimSpace(req.ReferredName),
		ReferredEmail:    strings.TrimSpace(req.ReferredEmail),
		ReferredCompany:  strings.TrimSpace(req.ReferredCompany),
		Status:           req.Status,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if ref.Status == "" {
		ref.Status = StatusPending
	}
	if ref.ReferrerClientID == "" {
		return nil, fmt.Errorf("%w: referrer_client_id is required", ErrInvalidInput)
	}
	if ref.Status == StatusConverted {
		return nil, fmt.Errorf("%w: use convert to mark a referral converted", ErrInvalidInput)
	}
	if err := s.validate(ctx, ref); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, fmt.Errorf("creating referral: %w", err)
	}
	summary := fmt.Sprintf("%s referred %s", ref.ReferrerClientID, ref.ReferredName)
	activity.Record(ctx, s.activity, s.logger, activity.EntityReferral, ref.ID, activity.ActionCreated, summary)
	return ref, nil
}

// Get fetches a referral by ID.
func (s *Service) Get(ctx context.Context, id string) (*Referral, error) {
	ref, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, id, "getting referral")
	}
	return ref, nil
}

// List returns referrals matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Referral, error) {
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Referral, error) {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ReferredName != nil {
		ref.ReferredName = strings.TrimSpace(*req.ReferredName)
	}
	if req.ReferredEmail != nil {
		ref.ReferredEmail = strings.TrimSpace(*req.ReferredEmail)
	}
	if req.ReferredCompany != nil {
		ref.ReferredCompany = strings.TrimSpace(*req.ReferredCompany)
	}
	if req.Notes != nil {
		ref.Notes = *req.Notes
	}
	if req.Status != nil && *req.Status != ref.Status {
		if *req.Status == StatusConverted || ref.ConvertedClientID != nil {
			return nil, fmt.Errorf("%w: conversion status is managed by convert", ErrInvalidInput)
		}
		ref.Status = *req.Status
	}
	if err := s.validate(ctx, ref); err != nil {
		return nil, err
	}
	ref.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, ref); err != nil {
		return nil, s.mapErr(err, id, "updating referral")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityReferral, ref.ID, activity.ActionUpdated, "updated referral "+ref.ReferredName)
	return ref, nil
}

// Delete removes a referral and its project links.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, id, "deleting referral")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityReferral, id, activity.ActionDeleted, "deleted referral "+id)
	return nil
}

// Convert turns the referral into a new client.
func (s *Service) Convert(ctx context.Context, id string, req ConvertRequest) (*Referral, *client.Client, error) {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ref.ConvertedClientID != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAlreadyConverted, id)
	}

	now := time.Now().UTC()
	c := &client.Client{
		Name:      ref.ReferredName,
		Company:   ref.ReferredCompany,
		Email:     ref.ReferredEmail,
		Phone:     strings.TrimSpace(req.Phone),
		Sector:    req.Sector,
		Status:    client.DefaultStatus,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Sector == "" {
		c.Sector = client.DefaultSector
	}
	if c.Notes == "" {
		c.Notes = fmt.Sprintf("Referred by %s (%s)", ref.ReferrerClientID, ref.ID)
	}
	if err := reference.Check(ctx, s.refs, reference.CategorySector, c.Sector); err != nil {
		return nil, nil, err
	}

	converted, err := s.repo.Convert(ctx, id, c)
	if err != nil {
		return nil, nil, s.mapErr(err, id, "converting referral")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityReferral, id, activity.ActionConverted, "converted to client "+c.ID)
	activity.Record(ctx, s.activity, s.logger, activity.EntityClient, c.ID, activity.ActionCreated, "created client "+c.Name+" from referral "+id)
	return converted, c, nil
}

func (s *Service) validate(ctx context.Context, ref *Referral) error {
	if ref.ReferredName == "" {
		return fmt.Errorf("%w: referred_name is required", ErrInvalidInput)
	}
	return reference.Check(ctx, s.refs, reference.CategoryReferralStatus, ref.Status)
}

func (s *Service) mapErr(err error, id, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrReferralNotFound, id)
	}
	if errors.Is(err, ErrAlreadyConverted) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}
