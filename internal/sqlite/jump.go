package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/repository"
)

const jumpColumns = `j.id, j.name, j.description, j.category, j.price, j.duration_weeks, j.features, j.images, j.status, j.created_at, j.updated_at`

var jumpDependents = []dependent{
	{table: "projects", column: "jump_id", label: "projects"},
	{table: "invoices", column: "jump_id", label: "invoices"},
}

func scanJump(s rowScanner) (*jump.Jump, error) {
	var j jump.Jump
	err := s.Scan(
		&j.ID,
		&j.Name,
		&j.Description,
		&j.Category,
		&j.Price,
		&j.DurationWeeks,
		&j.Features,
		&j.Images,
		&j.Status,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJumps(rows *sql.Rows) ([]jump.Jump, error) {
	defer rows.Close()
	jumps := []jump.Jump{}
	for rows.Next() {
		j, err := scanJump(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jump: %w", err)
		}
		jumps = append(jumps, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jump rows: %w", err)
	}
	return jumps, nil
}

// JumpRepository implements jump.Repository for SQLite
type JumpRepository struct {
	db *DB
}

// NewJumpRepository creates a new JumpRepository
func NewJumpRepository(db *DB) *JumpRepository {
	return &JumpRepository{db: db}
}

// Create assigns the next JMP identifier and inserts the jump
func (r *JumpRepository) Create(ctx context.Context, j *jump.Jump) error {
	id, err := r.db.createWithID(ctx, ident.Jump, func(tx *sql.Tx, id string) error {
		query := `
			INSERT INTO jumps (id, name, description, category, price, duration_weeks, features, images, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			id,
			j.Name,
			j.Description,
			j.Category,
			j.Price,
			j.DurationWeeks,
			j.Features,
			j.Images,
			j.Status,
			j.CreatedAt,
			j.UpdatedAt,
		)
		if err != nil {
			return writeError(err, "create", "jump")
		}
		return nil
	})
	if err != nil {
		return err
	}
	j.ID = id
	return nil
}

// Get retrieves a jump by ID
func (r *JumpRepository) Get(ctx context.Context, id string) (*jump.Jump, error) {
	return getJump(ctx, r.db, id)
}

func getJump(ctx context.Context, q querier, id string) (*jump.Jump, error) {
	query := `SELECT ` + jumpColumns + ` FROM jumps j WHERE j.id = ?`
	j, err := scanJump(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jump: %w", err)
	}
	return j, nil
}

// List returns jumps matching the filters ordered by name
func (r *JumpRepository) List(ctx context.Context, opts jump.ListOptions) ([]jump.Jump, error) {
	var f filter
	f.addIf("j.status", opts.Status)
	f.addIf("j.category", opts.Category)
	f.addSearch(opts.Query, "j.name", "j.description", "j.category")

	query := `SELECT ` + jumpColumns + ` FROM jumps j` + f.where() +
		` ORDER BY j.name, j.id` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jumps: %w", err)
	}
	return collectJumps(rows)
}

// Update overwrites the mutable jump fields
func (r *JumpRepository) Update(ctx context.Context, j *jump.Jump) error {
	query := `
		UPDATE jumps
		SET name = ?, description = ?, category = ?, price = ?, duration_weeks = ?,
			features = ?, images = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		j.Name,
		j.Description,
		j.Category,
		j.Price,
		j.DurationWeeks,
		j.Features,
		j.Images,
		j.Status,
		j.UpdatedAt,
		j.ID,
	)
	if err != nil {
		return writeError(err, "update", "jump")
	}
	return expectOneRow(result)
}

// Delete removes a jump and its client links. Projects and invoices built
// from the jump block the deletion.
func (r *JumpRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := rejectDependents(ctx, tx, "jump", id, jumpDependents...); err != nil {
			return err
		}
		return deleteRow(ctx, tx, "jumps", "jump", id)
	})
}

// LinkClient ensures the (jump, client) pair exists
func (r *JumpRepository) LinkClient(ctx context.Context, jumpID, clientID string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return linkJumpClient(ctx, tx, jumpID, clientID)
	})
}

func linkJumpClient(ctx context.Context, tx *sql.Tx, jumpID, clientID string) error {
	err := requireReferences(ctx, tx,
		parentRef{table: "jumps", label: "jump", id: jumpID},
		parentRef{table: "clients", label: "client", id: clientID},
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO jump_clients (jump_id, client_id) VALUES (?, ?) ON CONFLICT(jump_id, client_id) DO NOTHING`,
		jumpID, clientID,
	)
	if err != nil {
		return writeError(err, "link", "jump client")
	}
	return nil
}

// UnlinkClient removes the pair if present
func (r *JumpRepository) UnlinkClient(ctx context.Context, jumpID, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM jump_clients WHERE jump_id = ? AND client_id = ?`, jumpID, clientID)
	if err != nil {
		return fmt.Errorf("failed to unlink jump client: %w", err)
	}
	return nil
}

// SetClients replaces every link of the jump. Any missing client aborts the
// whole replacement.
func (r *JumpRepository) SetClients(ctx context.Context, jumpID string, clientIDs []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := requireReferences(ctx, tx, parentRef{table: "jumps", label: "jump", id: jumpID}); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM jump_clients WHERE jump_id = ?`, jumpID); err != nil {
			return fmt.Errorf("failed to clear jump clients: %w", err)
		}
		for _, clientID := range clientIDs {
			if err := linkJumpClient(ctx, tx, jumpID, clientID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListClients returns the clients linked to a jump in link order
func (r *JumpRepository) ListClients(ctx context.Context, jumpID string) ([]client.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM jump_clients jc
		JOIN clients c ON c.id = jc.client_id
		WHERE jc.jump_id = ?
		ORDER BY jc.linked_at, c.rowid
	`
	rows, err := r.db.QueryContext(ctx, query, jumpID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jump clients: %w", err)
	}
	return collectClients(rows)
}

// ListForClient returns the jumps linked to a client
func (r *JumpRepository) ListForClient(ctx context.Context, clientID string) ([]jump.Jump, error) {
	query := `
		SELECT ` + jumpColumns + `
		FROM jump_clients jc
		JOIN jumps j ON j.id = jc.jump_id
		WHERE jc.client_id = ?
		ORDER BY j.name, j.id
	`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client jumps: %w", err)
	}
	return collectJumps(rows)
}

// AddImage appends filename to the jump's images array
func (r *JumpRepository) AddImage(ctx context.Context, jumpID, filename string) (*jump.Jump, error) {
	var updated *jump.Jump
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		j, err := getJump(ctx, tx, jumpID)
		if err != nil {
			return err
		}
		if !j.Images.Contains(filename) {
			j.Images = append(j.Images, filename)
		}
		j.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE jumps SET images = ?, updated_at = ? WHERE id = ?`, j.Images, j.UpdatedAt, jumpID); err != nil {
			return fmt.Errorf("failed to update jump images: %w", err)
		}
		updated = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
