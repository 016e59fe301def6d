package client

import "context"

// Repository provides persistence for clients and their interactions.
// Create and AddInteraction assign the generated ID.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context, opts ListOptions) ([]Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
	AddInteraction(ctx context.Context, in *Interaction) error
	ListInteractions(ctx context.Context, clientID string) ([]Interaction, error)
}
