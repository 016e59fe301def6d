package client

import "time"

const (
	DefaultStatus          = "lead"
	DefaultSector          = "other"
	DefaultInteractionType = "note"
)

// Client is a customer or prospect of the business.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Sector    string    `json:"sector"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interaction is a logged contact with a client.
type Interaction struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Type       string    `json:"type"`
	Summary    string    `json:"summary"`
	Details    string    `json:"details"`
	Attachment string    `json:"attachment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListOptions filters client listings.
type ListOptions struct {
	Status string
	Sector string
	Query  string
	Limit  int
	Offset int
}

// CreateRequest defines client creation inputs.
type CreateRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Sector  string `json:"sector"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Sector  *string `json:"sector"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

// InteractionRequest defines interaction inputs.
type InteractionRequest struct {
	Type       string     `json:"type"`
	Summary    string     `json:"summary"`
	Details    string     `json:"details"`
	Attachment string     `json:"-"`
	OccurredAt *time.Time `json:"occurred_at"`
}
