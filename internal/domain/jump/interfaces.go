package jump

import (
	"context"

	"github.com/rpggio/crmdesk/internal/domain/client"
)

// Repository provides persistence for jumps and their client links.
type Repository interface {
	Create(ctx context.Context, j *Jump) error
	Get(ctx context.Context, id string) (*Jump, error)
	List(ctx context.Context, opts ListOptions) ([]Jump, error)
	Update(ctx context.Context, j *Jump) error
	Delete(ctx context.Context, id string) error

	// LinkClient ensures the pair exists; linking twice is a no-op.
	LinkClient(ctx context.Context, jumpID, clientID string) error
	UnlinkClient(ctx context.Context, jumpID, clientID string) error
	// SetClients replaces every link of the jump in one transaction.
	SetClients(ctx context.Context, jumpID string, clientIDs []string) error
	ListClients(ctx context.Context, jumpID string) ([]client.Client, error)
	ListForClient(ctx context.Context, clientID string) ([]Jump, error)
	// AddImage appends filename to the jump's images and returns the updated jump.
	AddImage(ctx context.Context, jumpID, filename string) (*Jump, error)
}
