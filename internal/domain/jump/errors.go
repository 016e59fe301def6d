package jump

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrJumpNotFound indicates the jump doesn't exist.
	ErrJumpNotFound = fmt.Errorf("jump %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid jump input.
	ErrInvalidInput = fmt.Errorf("jump %w", repository.ErrInvalidInput)
)
