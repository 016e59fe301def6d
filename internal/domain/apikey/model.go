package apikey

import (
	"time"

	"github.com/rpggio/crmdesk/internal/domain/strlist"
)

// Scope grants a class of access to the API.
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
	ScopeAdmin Scope = "admin"
)

// TokenPrefix starts every issued token.
const TokenPrefix = "crm_"

// APIKey is an issued API credential. The token itself is never stored.
type APIKey struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	KeyPrefix  string       `json:"key_prefix"`
	Scopes     strlist.List `json:"scopes"`
	CreatedAt  time.Time    `json:"created_at"`
	LastUsedAt *time.Time   `json:"last_used_at"`
	RevokedAt  *time.Time   `json:"revoked_at"`
}

// Issued is returned once at creation and carries the plaintext token.
type Issued struct {
	APIKey
	Token string `json:"token"`
}

// CreateRequest defines API key creation inputs.
type CreateRequest struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// HasScope reports whether the key grants scope. Admin implies write and
// write implies read.
func (k *APIKey) HasScope(scope Scope) bool {
	if k == nil || k.RevokedAt != nil {
		return false
	}
	for _, s := range k.Scopes {
		switch Scope(s) {
		case scope, ScopeAdmin:
			return true
		case ScopeWrite:
			if scope == ScopeRead {
				return true
			}
		}
	}
	return false
}

func validScope(s string) bool {
	switch Scope(s) {
	case ScopeRead, ScopeWrite, ScopeAdmin:
		return true
	}
	return false
}
