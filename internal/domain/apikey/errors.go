package apikey

import (
	"errors"
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrKeyNotFound indicates the API key doesn't exist.
	ErrKeyNotFound = fmt.Errorf("api key %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid API key input.
	ErrInvalidInput = fmt.Errorf("api key %w", repository.ErrInvalidInput)
	// ErrUnauthorized indicates a missing, unknown or revoked token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a valid key without the required scope.
	ErrForbidden = errors.New("forbidden")
)
