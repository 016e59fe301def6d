package reference

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrInvalidInput indicates an unusable reference value.
	ErrInvalidInput = fmt.Errorf("reference value %w", repository.ErrInvalidInput)
	// ErrUnknownCategory indicates the category has no values.
	ErrUnknownCategory = fmt.Errorf("reference category %w", repository.ErrNotFound)
)
