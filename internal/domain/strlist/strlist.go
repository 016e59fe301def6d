// Package strlist stores ordered string lists (features, images, specialties,
// scopes) in a single TEXT column as a JSON array.
package strlist

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rpggio/crmdesk/internal/repository"
)

// List is an ordered list of strings. It encodes itself only when crossing
// the database or JSON boundary.
type List []string

// Encode returns the JSON array text for values. A nil slice encodes as "[]".
// Entries must be valid UTF-8; JSON cannot carry other bytes unchanged.
func Encode(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	for i, v := range values {
		if !utf8.ValidString(v) {
			return "", fmt.Errorf("%w: string list entry %d is not valid UTF-8", repository.ErrInvalidInput, i)
		}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode string list: %w", err)
	}
	return string(data), nil
}

// Decode parses JSON array text. Empty text and "null" yield an empty list.
func Decode(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "null" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return nil, fmt.Errorf("decode string list %q: %w", text, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Value implements driver.Valuer.
func (l List) Value() (driver.Value, error) {
	return Encode(l)
}

// Scan implements sql.Scanner.
func (l *List) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case nil:
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	values, err := Decode(text)
	if err != nil {
		return err
	}
	*l = values
	return nil
}

// MarshalJSON renders a nil list as [] so API clients always see an array.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Contains reports whether s is in the list.
func (l List) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Clean trims entries and drops blanks and duplicates, keeping first-seen order.
func Clean(values []string) List {
	out := make(List, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
