package apikey

import (
	"context"
	"time"
)

// Repository provides persistence for API keys.
type Repository interface {
	Create(ctx context.Context, key *APIKey, keyHash string) error
	Get(ctx context.Context, id string) (*APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, id string, at time.Time) error
}
