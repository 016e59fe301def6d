package copilot

import "context"

// Repository provides persistence for copilots.
type Repository interface {
	Create(ctx context.Context, c *Copilot) error
	Get(ctx context.Context, id string) (*Copilot, error)
	List(ctx context.Context, opts ListOptions) ([]Copilot, error)
	Update(ctx context.Context, c *Copilot) error
	Delete(ctx context.Context, id string) error
}
