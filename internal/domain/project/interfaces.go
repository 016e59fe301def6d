package project

import (
	"context"

	"github.com/rpggio/crmdesk/internal/domain/referral"
)

// Repository provides persistence for projects and their links.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error

	// AssignCopilot ensures the assignment exists. Assigning twice keeps one
	// row and updates its role.
	AssignCopilot(ctx context.Context, projectID string, a AssignmentRequest) error
	UnassignCopilot(ctx context.Context, projectID, copilotID string) error
	SetCopilots(ctx context.Context, projectID string, assignments []AssignmentRequest) error
	ListCopilots(ctx context.Context, projectID string) ([]Assignment, error)

	// LinkReferral ensures the pair exists; linking twice is a no-op.
	LinkReferral(ctx context.Context, projectID, referralID string) error
	ListReferrals(ctx context.Context, projectID string) ([]referral.Referral, error)
}

// TaskRepository provides persistence for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, opts TaskListOptions) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
