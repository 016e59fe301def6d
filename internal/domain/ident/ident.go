// Package ident formats and parses the human-readable prefixed identifiers
// (CLI001, PRJ014, ...) minted for every entity.
package ident

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/crmdesk/internal/repository"
)

// Prefix names the counter an identifier is drawn from.
type Prefix string

const (
	Client      Prefix = "CLI"
	Interaction Prefix = "INT"
	Jump        Prefix = "JMP"
	Project     Prefix = "PRJ"
	Task        Prefix = "TSK"
	Invoice     Prefix = "INV"
	InvoiceItem Prefix = "ITM"
	Copilot     Prefix = "COP"
	Referral    Prefix = "REF"
	APIKey      Prefix = "KEY"
)

// minDigits is the zero-padding width. Counters past 999 simply grow wider.
const minDigits = 3

const maxPrefixLen = 8

// Validate reports whether p is a usable counter prefix: 1-8 uppercase ASCII letters.
func (p Prefix) Validate() error {
	if len(p) == 0 || len(p) > maxPrefixLen {
		return fmt.Errorf("%w: prefix %q must be 1-%d letters", repository.ErrInvalidInput, string(p), maxPrefixLen)
	}
	for _, c := range p {
		if c < 'A' || c > 'Z' {
			return fmt.Errorf("%w: prefix %q must be uppercase letters", repository.ErrInvalidInput, string(p))
		}
	}
	return nil
}

// Format renders counter n under prefix p, e.g. Format("CLI", 1) == "CLI001".
func Format(p Prefix, n int64) string {
	return fmt.Sprintf("%s%0*d", p, minDigits, n)
}

// Parse splits an identifier back into its prefix and counter.
func Parse(id string) (Prefix, int64, error) {
	i := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 || len(id)-i < minDigits {
		return "", 0, fmt.Errorf("%w: malformed id %q", repository.ErrInvalidInput, id)
	}
	p := Prefix(id[:i])
	if err := p.Validate(); err != nil {
		return "", 0, err
	}
	n, err := strconv.ParseInt(id[i:], 10, 64)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("%w: malformed id %q", repository.ErrInvalidInput, id)
	}
	return p, n, nil
}
