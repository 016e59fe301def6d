package client

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrClientNotFound indicates the client doesn't exist.
	ErrClientNotFound = fmt.Errorf("client %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid client input.
	ErrInvalidInput = fmt.Errorf("client %w", repository.ErrInvalidInput)
)
