package copilot

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrCopilotNotFound indicates the copilot doesn't exist.
	ErrCopilotNotFound = fmt.Errorf("copilot %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid copilot input.
	ErrInvalidInput = fmt.Errorf("copilot %w", repository.ErrInvalidInput)
)
