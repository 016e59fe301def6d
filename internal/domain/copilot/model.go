package copilot

import (
	"time"

	"github.com/rpggio/crmdesk/internal/domain/strlist"
)

const DefaultStatus = "active"

// Copilot is a staff member or contractor who can be assigned to projects.
type Copilot struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Specialties strlist.List `json:"specialties"`
	HourlyRate  float64      `json:"hourly_rate"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ListOptions filters copilot listings.
type ListOptions struct {
	Status    string
	Specialty string
	Query     string
	Limit     int
	Offset    int
}

// CreateRequest defines copilot creation inputs.
type CreateRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Specialties []string `json:"specialties"`
	HourlyRate  float64  `json:"hourly_rate"`
	Status      string   `json:"status"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Role        *string   `json:"role"`
	Specialties *[]string `json:"specialties"`
	HourlyRate  *float64  `json:"hourly_rate"`
	Status      *string   `json:"status"`
}
