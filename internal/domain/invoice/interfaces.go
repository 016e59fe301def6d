package invoice

import "context"

// Repository provides persistence for invoices and their items. Every write
// that touches items recomputes the stored total in the same transaction.
type Repository interface {
	// Create inserts the invoice with its items.
	Create(ctx context.Context, inv *Invoice) error
	// Get returns the invoice with its items.
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, opts ListOptions) ([]Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id string) error

	// AddItem appends an item and returns the updated invoice. It fails with
	// ErrInvoiceLocked unless the invoice is a draft.
	AddItem(ctx context.Context, item *Item) (*Invoice, error)
	DeleteItem(ctx context.Context, invoiceID, itemID string) (*Invoice, error)
	ListItems(ctx context.Context, invoiceID string) ([]Item, error)
}
