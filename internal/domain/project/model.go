package project

import (
	"time"

	"github.com/rpggio/crmdesk/internal/domain/copilot"
)

const (
	DefaultStatus     = "planned"
	DefaultTaskStatus = "todo"
	dateLayout        = "2006-01-02"
)

// Project is client work, optionally delivered from a jump template.
type Project struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	JumpID      *string   `json:"jump_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Budget      float64   `json:"budget"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	DueDate   string    `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Assignment is a copilot working on a project.
type Assignment struct {
	copilot.Copilot
	ProjectRole string    `json:"project_role"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// ListOptions filters project listings.
type ListOptions struct {
	ClientID string
	JumpID   string
	Status   string
	Query    string
	Limit    int
	Offset   int
}

// TaskListOptions filters task listings.
type TaskListOptions struct {
	ProjectID string
	Status    string
	Limit     int
	Offset    int
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ClientID    string  `json:"client_id"`
	JumpID      string  `json:"jump_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      float64 `json:"budget"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
// An empty JumpID detaches the jump.
type UpdateRequest struct {
	ClientID    *string  `json:"client_id"`
	JumpID      *string  `json:"jump_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Budget      *float64 `json:"budget"`
}

// TaskRequest defines task creation inputs.
type TaskRequest struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	DueDate   string `json:"due_date"`
}

// TaskUpdateRequest holds a partial task update.
type TaskUpdateRequest struct {
	Title   *string `json:"title"`
	Status  *string `json:"status"`
	DueDate *string `json:"due_date"`
}

// AssignmentRequest names one copilot and the role they play on the project.
type AssignmentRequest struct {
	CopilotID string `json:"copilot_id"`
	Role      string `json:"role"`
}
