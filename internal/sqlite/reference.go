package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/reference"
)

// ReferenceRepository implements reference.Repository for SQLite
type ReferenceRepository struct {
	db *DB
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// List returns the values of one category in display order
func (r *ReferenceRepository) List(ctx context.Context, category reference.Category) ([]reference.Value, error) {
	query := `
		SELECT category, value, label, sort_order
		FROM reference_values
		WHERE category = ?
		ORDER BY sort_order, value
	`

	rows, err := r.db.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list reference values: %w", err)
	}
	defer rows.Close()

	values := []reference.Value{}
	for rows.Next() {
		var v reference.Value
		if err := rows.Scan(&v.Category, &v.Value, &v.Label, &v.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan reference value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference rows: %w", err)
	}
	return values, nil
}

// Categories returns every category that has at least one value
func (r *ReferenceRepository) Categories(ctx context.Context) ([]reference.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM reference_values ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference categories: %w", err)
	}
	defer rows.Close()

	categories := []reference.Category{}
	for rows.Next() {
		var c reference.Category
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan reference category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Add inserts a value, placing it last in its category when no order is given
func (r *ReferenceRepository) Add(ctx context.Context, v *reference.Value) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if v.SortOrder == 0 {
			err := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM reference_values WHERE category = ?`,
				string(v.Category),
			).Scan(&v.SortOrder)
			if err != nil {
				return fmt.Errorf("failed to compute sort order: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO reference_values (category, value, label, sort_order) VALUES (?, ?, ?, ?)`,
			string(v.Category), v.Value, v.Label, v.SortOrder,
		)
		if err != nil {
			return writeError(err, "add", "reference value "+string(v.Category)+"/"+v.Value)
		}
		return nil
	})
}
