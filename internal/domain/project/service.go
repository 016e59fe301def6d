package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/repository"
)

// Service handles project, task and staffing operations.
type Service struct {
	repo     Repository
	tasks    TaskRepository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, tasks TaskRepository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, tasks: tasks, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new project. The client and optional jump
// must exist.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ClientID:    strings.TrimSpace(req.ClientID),
		JumpID:      optionalID(req.JumpID),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		StartDate:   strings.TrimSpace(req.StartDate),
		EndDate:     strings.TrimSpace(req.EndDate),
		Budget:      req.Budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	summary := fmt.Sprintf("created project %s for %s", p.Name, p.ClientID)
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, p.ID, activity.ActionCreated, summary)
	return p, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapProjectErr(err, id, "getting project")
	}
	return p, nil
}

// List returns projects matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Project, error) {
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		p.ClientID = strings.TrimSpace(*req.ClientID)
	}
	if req.JumpID != nil {
		p.JumpID = optionalID(*req.JumpID)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.StartDate != nil {
		p.StartDate = strings.TrimSpace(*req.StartDate)
	}
	if req.EndDate != nil {
		p.EndDate = strings.TrimSpace(*req.EndDate)
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapProjectErr(err, id, "updating project")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, p.ID, activity.ActionUpdated, "updated project "+p.Name)
	return p, nil
}

// Delete removes a project with its tasks and links. Invoices block the deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapProjectErr(err, id, "deleting project")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, id, activity.ActionDeleted, "deleted project "+id)
	return nil
}

// AssignCopilot ensures a copilot is assigned to the project.
func (s *Service) AssignCopilot(ctx context.Context, projectID string, req AssignmentRequest) error {
	req.CopilotID = strings.TrimSpace(req.CopilotID)
	req.Role = strings.TrimSpace(req.Role)
	if req.CopilotID == "" {
		return fmt.Errorf("%w: copilot_id is required", ErrInvalidInput)
	}
	if err := s.repo.AssignCopilot(ctx, projectID, req); err != nil {
		return fmt.Errorf("assigning copilot: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, projectID, activity.ActionLinked, "assigned copilot "+req.CopilotID)
	return nil
}

// UnassignCopilot removes an assignment, if present.
func (s *Service) UnassignCopilot(ctx context.Context, projectID, copilotID string) error {
	if err := s.repo.UnassignCopilot(ctx, projectID, copilotID); err != nil {
		return fmt.Errorf("unassigning copilot: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, projectID, activity.ActionUnlinked, "unassigned copilot "+copilotID)
	return nil
}

// SetCopilots replaces the project's assignments. Duplicate copilot IDs keep
// the last role given.
func (s *Service) SetCopilots(ctx context.Context, projectID string, reqs []AssignmentRequest) ([]Assignment, error) {
	index := make(map[string]int, len(reqs))
	assignments := make([]AssignmentRequest, 0, len(reqs))
	for _, req := range reqs {
		req.CopilotID = strings.TrimSpace(req.CopilotID)
		req.Role = strings.TrimSpace(req.Role)
		if req.CopilotID == "" {
			return nil, fmt.Errorf("%w: copilot_id is required", ErrInvalidInput)
		}
		if i, ok := index[req.CopilotID]; ok {
			assignments[i] = req
			continue
		}
		index[req.CopilotID] = len(assignments)
		assignments = append(assignments, req)
	}

	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.repo.SetCopilots(ctx, projectID, assignments); err != nil {
		return nil, fmt.Errorf("setting project copilots: %w", err)
	}
	summary := fmt.Sprintf("assigned %d copilots", len(assignments))
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, projectID, activity.ActionLinked, summary)
	return s.repo.ListCopilots(ctx, projectID)
}

// ListCopilots returns the copilots assigned to a project.
func (s *Service) ListCopilots(ctx context.Context, projectID string) ([]Assignment, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListCopilots(ctx, projectID)
}

// LinkReferral ensures the referral is associated with the project.
func (s *Service) LinkReferral(ctx context.Context, projectID, referralID string) error {
	referralID = strings.TrimSpace(referralID)
	if referralID == "" {
		return fmt.Errorf("%w: referral_id is required", ErrInvalidInput)
	}
	if err := s.repo.LinkReferral(ctx, projectID, referralID); err != nil {
		return fmt.Errorf("linking referral: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityProject, projectID, activity.ActionLinked, "linked referral "+referralID)
	return nil
}

// ListReferrals returns the referrals linked to a project.
func (s *Service) ListReferrals(ctx context.Context, projectID string) ([]referral.Referral, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListReferrals(ctx, projectID)
}

// CreateTask adds a task to a project.
func (s *Service) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ProjectID: strings.TrimSpace(req.ProjectID),
		Title:     strings.TrimSpace(req.Title),
		Status:    req.Status,
		DueDate:   strings.TrimSpace(req.DueDate),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t.Status == "" {
		t.Status = DefaultTaskStatus
	}
	if t.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	if err := s.validateTask(ctx, t); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityTask, t.ID, activity.ActionCreated, "created task "+t.Title)
	return t, nil
}

// GetTask fetches a task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, mapTaskErr(err, id, "getting task")
	}
	return t, nil
}

// ListTasks returns tasks matching opts ordered by due date.
func (s *Service) ListTasks(ctx context.Context, opts TaskListOptions) ([]Task, error) {
	return s.tasks.List(ctx, opts)
}

// UpdateTask applies the non-nil fields of req.
func (s *Service) UpdateTask(ctx context.Context, id string, req TaskUpdateRequest) (*Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.DueDate != nil {
		t.DueDate = strings.TrimSpace(*req.DueDate)
	}
	if err := s.validateTask(ctx, t); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, mapTaskErr(err, id, "updating task")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityTask, t.ID, activity.ActionUpdated, fmt.Sprintf("task %s is %s", t.Title, t.Status))
	return t, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return mapTaskErr(err, id, "deleting task")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityTask, id, activity.ActionDeleted, "deleted task "+id)
	return nil
}

func (s *Service) validate(ctx context.Context, p *Project) error {
	if p.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}
	if err := validateDate("start_date", p.StartDate); err != nil {
		return err
	}
	if err := validateDate("end_date", p.EndDate); err != nil {
		return err
	}
	if p.StartDate != "" && p.EndDate != "" && p.EndDate < p.StartDate {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return reference.Check(ctx, s.refs, reference.CategoryProjectStatus, p.Status)
}

func (s *Service) validateTask(ctx context.Context, t *Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateDate("due_date", t.DueDate); err != nil {
		return err
	}
	return reference.Check(ctx, s.refs, reference.CategoryTaskStatus, t.Status)
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return nil
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

func mapProjectErr(err error, id, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func mapTaskErr(err error, id, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return fmt.Errorf("%s: %w", action, err)
}
