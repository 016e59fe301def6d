package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/crmdesk/internal/repository"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parentRef names a parent row a new or updated record points at.
type parentRef struct {
	table string
	label string
	id    string
}

// requireReferences fails with repository.ErrMissingReference for the first
// referenced row that does not exist. Empty IDs are optional references and skipped.
func requireReferences(ctx context.Context, q querier, refs ...parentRef) error {
	for _, ref := range refs {
		if ref.id == "" {
			continue
		}
		var exists bool
		query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)`, ref.table)
		if err := q.QueryRowContext(ctx, query, ref.id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check %s %s: %w", ref.label, ref.id, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s %s", repository.ErrMissingReference, ref.label, ref.id)
		}
	}
	return nil
}

// dependent is an independent table whose rows block deletion of a parent.
type dependent struct {
	table  string
	column string
	label  string
}

// rejectDependents returns repository.ErrHasDependents listing every dependent
// table that still references parentID.
func rejectDependents(ctx context.Context, q querier, parentLabel, parentID string, deps ...dependent) error {
	var found []string
	for _, dep := range deps {
		var count int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, dep.table, dep.column)
		if err := q.QueryRowContext(ctx, query, parentID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s: %w", dep.label, err)
		}
		if count > 0 {
			found = append(found, fmt.Sprintf("%d %s", count, dep.label))
		}
	}
	if len(found) > 0 {
		return fmt.Errorf("%w: %s %s is referenced by %s", repository.ErrHasDependents, parentLabel, parentID, strings.Join(found, ", "))
	}
	return nil
}

// deleteRow removes one row by id, mapping a missing row to ErrNotFound and a
// foreign key failure to ErrHasDependents.
func deleteRow(ctx context.Context, q querier, table, label, id string) error {
	result, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s %s", repository.ErrHasDependents, label, id)
		}
		return fmt.Errorf("failed to delete %s: %w", label, err)
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// writeError maps constraint failures on insert/update to repository sentinels.
func writeError(err error, action, label string) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", repository.ErrMissingReference, label)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: duplicate %s", repository.ErrConflict, label)
	default:
		return fmt.Errorf("failed to %s %s: %w", action, label, err)
	}
}
