package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/repository"
)

const copilotColumns = `cp.id, cp.name, cp.email, cp.role, cp.specialties, cp.hourly_rate, cp.status, cp.created_at, cp.updated_at`

func copilotFields(c *copilot.Copilot) []any {
	return []any{
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Role,
		&c.Specialties,
		&c.HourlyRate,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

// CopilotRepository implements copilot.Repository for SQLite
type CopilotRepository struct {
	db *DB
}

// NewCopilotRepository creates a new CopilotRepository
func NewCopilotRepository(db *DB) *CopilotRepository {
	return &CopilotRepository{db: db}
}

// Create assigns the next COP identifier and inserts the copilot
func (r *CopilotRepository) Create(ctx context.Context, c *copilot.Copilot) error {
	id, err := r.db.createWithID(ctx, ident.Copilot, func(tx *sql.Tx, id string) error {
		query := `
			INSERT INTO copilots (id, name, email, role, specialties, hourly_rate, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			id,
			c.Name,
			c.Email,
			c.Role,
			c.Specialties,
			c.HourlyRate,
			c.Status,
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			return writeError(err, "create", "copilot")
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Get retrieves a copilot by ID
func (r *CopilotRepository) Get(ctx context.Context, id string) (*copilot.Copilot, error) {
	var c copilot.Copilot
	query := `SELECT ` + copilotColumns + ` FROM copilots cp WHERE cp.id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(copilotFields(&c)...)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get copilot: %w", err)
	}
	return &c, nil
}

// List returns copilots matching the filters ordered by name. Specialty
// matches an exact element of the specialties array.
func (r *CopilotRepository) List(ctx context.Context, opts copilot.ListOptions) ([]copilot.Copilot, error) {
	var f filter
	f.addIf("cp.status", opts.Status)
	if opts.Specialty != "" {
		f.add("EXISTS (SELECT 1 FROM json_each(cp.specialties) WHERE json_each.value = ?)", opts.Specialty)
	}
	f.addSearch(opts.Query, "cp.name", "cp.email", "cp.role")

	query := `SELECT ` + copilotColumns + ` FROM copilots cp` + f.where() +
		` ORDER BY cp.name, cp.id` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list copilots: %w", err)
	}
	defer rows.Close()

	copilots := []copilot.Copilot{}
	for rows.Next() {
		var c copilot.Copilot
		if err := rows.Scan(copilotFields(&c)...); err != nil {
			return nil, fmt.Errorf("failed to scan copilot: %w", err)
		}
		copilots = append(copilots, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating copilot rows: %w", err)
	}
	return copilots, nil
}

// Update overwrites the mutable copilot fields
func (r *CopilotRepository) Update(ctx context.Context, c *copilot.Copilot) error {
	query := `
		UPDATE copilots
		SET name = ?, email = ?, role = ?, specialties = ?, hourly_rate = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.Email,
		c.Role,
		c.Specialties,
		c.HourlyRate,
		c.Status,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return writeError(err, "update", "copilot")
	}
	return expectOneRow(result)
}

// Delete removes a copilot; project assignments cascade
func (r *CopilotRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "copilots", "copilot", id)
}
