package invoice

import (
	"fmt"
	"math"
	"time"
)

// Invoice statuses.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusOverdue   = "overdue"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Invoice bills a client, optionally for a project or jump.
type Invoice struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	ProjectID *string   `json:"project_id"`
	JumpID    *string   `json:"jump_id"`
	Status    string    `json:"status"`
	IssueDate string    `json:"issue_date"`
	DueDate   string    `json:"due_date"`
	Total     float64   `json:"total"`
	Notes     string    `json:"notes"`
	Items     []Item    `json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one billed line of an invoice.
type Item struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Amount      float64   `json:"amount"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListOptions filters invoice listings.
type ListOptions struct {
	ClientID  string
	ProjectID string
	Status    string
	Limit     int
	Offset    int
}

// ItemRequest defines one invoice line.
type ItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateRequest defines invoice creation inputs.
type CreateRequest struct {
	ClientID  string        `json:"client_id"`
	ProjectID string        `json:"project_id"`
	JumpID    string        `json:"jump_id"`
	IssueDate string        `json:"issue_date"`
	DueDate   string        `json:"due_date"`
	Notes     string        `json:"notes"`
	Items     []ItemRequest `json:"items"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Status    *string `json:"status"`
	IssueDate *string `json:"issue_date"`
	DueDate   *string `json:"due_date"`
	Notes     *string `json:"notes"`
}

// Round2 rounds a money amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotal recomputes item amounts and the invoice total. It fails with
// ErrInvalidInput when an amount or the total is not a finite number.
func (inv *Invoice) ComputeTotal() error {
	var total float64
	for i := range inv.Items {
		amount, err := ItemAmount(inv.Items[i].Quantity, inv.Items[i].UnitPrice)
		if err != nil {
			return err
		}
		inv.Items[i].Amount = amount
		total += amount
	}
	total = Round2(total)
	if !finite(total) {
		return fmt.Errorf("%w: invoice total is out of range", ErrInvalidInput)
	}
	inv.Total = total
	return nil
}

// ItemAmount is quantity times unit price rounded to cents.
func ItemAmount(quantity, unitPrice float64) (float64, error) {
	amount := Round2(quantity * unitPrice)
	if !finite(amount) {
		return 0, fmt.Errorf("%w: item amount is out of range", ErrInvalidInput)
	}
	return amount, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

var transitions = map[string][]string{
	StatusDraft:   {StatusSent, StatusCancelled},
	StatusSent:    {StatusOverdue, StatusPaid, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
