package activity

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

// ErrInvalidInput indicates an unusable activity entry.
var ErrInvalidInput = fmt.Errorf("activity %w", repository.ErrInvalidInput)
