package sqlite

import (
	"strings"
)

// filter accumulates WHERE conditions and their arguments.
type filter struct {
	conditions []string
	args       []any
}

func (f *filter) add(condition string, args ...any) {
	f.conditions = append(f.conditions, condition)
	f.args = append(f.args, args...)
}

// addIf adds an equality condition when value is non-empty.
func (f *filter) addIf(column, value string) {
	if value != "" {
		f.add(column+" = ?", value)
	}
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// addSearch matches q as a case-insensitive substring of any column.
func (f *filter) addSearch(q string, columns ...string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = "LOWER(" + column + `) LIKE ? ESCAPE '\'`
		f.args = append(f.args, pattern)
	}
	f.conditions = append(f.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// page appends LIMIT/OFFSET to query. SQLite needs a LIMIT for OFFSET, so
// -1 stands in for unlimited.
func (f *filter) page(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		limit = -1
	}
	f.args = append(f.args, limit)
	if offset <= 0 {
		return " LIMIT ?"
	}
	f.args = append(f.args, offset)
	return " LIMIT ? OFFSET ?"
}

// nullable maps an optional ID to a SQL NULL when absent.
func nullable(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}

func derefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
