package invoice

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrInvoiceNotFound indicates the invoice doesn't exist.
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", repository.ErrNotFound)
	// ErrItemNotFound indicates the invoice item doesn't exist.
	ErrItemNotFound = fmt.Errorf("invoice item %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid invoice input.
	ErrInvalidInput = fmt.Errorf("invoice %w", repository.ErrInvalidInput)
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = fmt.Errorf("invoice status transition: %w", repository.ErrConflict)
	// ErrInvoiceLocked indicates items changed on an invoice that is no longer a draft.
	ErrInvoiceLocked = fmt.Errorf("invoice items can only change while draft: %w", repository.ErrConflict)
)
