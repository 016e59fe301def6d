package project

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = fmt.Errorf("project %w", repository.ErrNotFound)
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = fmt.Errorf("task %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = fmt.Errorf("project %w", repository.ErrInvalidInput)
)
