package referral

import (
	"context"

	"github.com/rpggio/crmdesk/internal/domain/client"
)

// Repository provides persistence for referrals.
type Repository interface {
	Create(ctx context.Context, ref *Referral) error
	Get(ctx context.Context, id string) (*Referral, error)
	List(ctx context.Context, opts ListOptions) ([]Referral, error)
	Update(ctx context.Context, ref *Referral) error
	Delete(ctx context.Context, id string) error
	// Convert inserts c and marks the referral converted in one transaction.
	// It fails with ErrAlreadyConverted when the referral has a converted client.
	Convert(ctx context.Context, id string, c *client.Client) (*Referral, error)
}
