package referral

import (
	"fmt"

	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	// ErrReferralNotFound indicates the referral doesn't exist.
	ErrReferralNotFound = fmt.Errorf("referral %w", repository.ErrNotFound)
	// ErrInvalidInput indicates invalid referral input.
	ErrInvalidInput = fmt.Errorf("referral %w", repository.ErrInvalidInput)
	// ErrAlreadyConverted indicates the referral already produced a client.
	ErrAlreadyConverted = fmt.Errorf("referral already converted: %w", repository.ErrConflict)
)
