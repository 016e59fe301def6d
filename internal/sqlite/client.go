package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/repository"
)

const clientColumns = `c.id, c.name, c.company, c.email, c.phone, c.address, c.sector, c.status, c.notes, c.created_at, c.updated_at`

// Independent records that keep a client from being deleted.
var clientDependents = []dependent{
	{table: "projects", column: "client_id", label: "projects"},
	{table: "invoices", column: "client_id", label: "invoices"},
	{table: "referrals", column: "referrer_client_id", label: "referrals made"},
	{table: "referrals", column: "converted_client_id", label: "converted referrals"},
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (*client.Client, error) {
	var c client.Client
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Company,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Sector,
		&c.Status,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectClients(rows *sql.Rows) ([]client.Client, error) {
	defer rows.Close()
	clients := []client.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

// insertClient writes c under id. Referral conversion reuses it inside its own transaction.
func insertClient(ctx context.Context, q querier, id string, c *client.Client) error {
	query := `
		INSERT INTO clients (id, name, company, email, phone, address, sector, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		id,
		c.Name,
		c.Company,
		c.Email,
		c.Phone,
		c.Address,
		c.Sector,
		c.Status,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "create", "client")
	}
	return nil
}

// ClientRepository implements client.Repository for SQLite
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create assigns the next CLI identifier and inserts the client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	id, err := r.db.createWithID(ctx, ident.Client, func(tx *sql.Tx, id string) error {
		return insertClient(ctx, tx, id, c)
	})
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Get retrieves a client by ID
func (r *ClientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = ?`

	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// List returns clients matching the filters, newest first
func (r *ClientRepository) List(ctx context.Context, opts client.ListOptions) ([]client.Client, error) {
	var f filter
	f.addIf("c.status", opts.Status)
	f.addIf("c.sector", opts.Sector)
	f.addSearch(opts.Query, "c.name", "c.company", "c.email")

	query := `SELECT ` + clientColumns + ` FROM clients c` + f.where() +
		` ORDER BY c.created_at DESC, c.rowid DESC` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return collectClients(rows)
}

// Update overwrites the mutable client fields
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = ?, company = ?, email = ?, phone = ?, address = ?, sector = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.Company,
		c.Email,
		c.Phone,
		c.Address,
		c.Sector,
		c.Status,
		c.Notes,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return writeError(err, "update", "client")
	}
	return expectOneRow(result)
}

// Delete removes a client with its interactions and jump links. Projects,
// invoices and referrals that reference the client block the deletion.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := rejectDependents(ctx, tx, "client", id, clientDependents...); err != nil {
			return err
		}
		return deleteRow(ctx, tx, "clients", "client", id)
	})
}

// AddInteraction assigns the next INT identifier and inserts the interaction
func (r *ClientRepository) AddInteraction(ctx context.Context, in *client.Interaction) error {
	id, err := r.db.createWithID(ctx, ident.Interaction, func(tx *sql.Tx, id string) error {
		if err := requireReferences(ctx, tx, parentRef{table: "clients", label: "client", id: in.ClientID}); err != nil {
			return err
		}
		query := `
			INSERT INTO interactions (id, client_id, type, summary, details, attachment, occurred_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			id,
			in.ClientID,
			in.Type,
			in.Summary,
			in.Details,
			in.Attachment,
			in.OccurredAt,
			in.CreatedAt,
		)
		if err != nil {
			return writeError(err, "create", "interaction")
		}
		return nil
	})
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

// ListInteractions returns a client's interactions, most recent first
func (r *ClientRepository) ListInteractions(ctx context.Context, clientID string) ([]client.Interaction, error) {
	query := `
		SELECT id, client_id, type, summary, details, attachment, occurred_at, created_at
		FROM interactions
		WHERE client_id = ?
		ORDER BY occurred_at DESC, rowid DESC
	`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	interactions := []client.Interaction{}
	for rows.Next() {
		var in client.Interaction
		if err := rows.Scan(
			&in.ID,
			&in.ClientID,
			&in.Type,
			&in.Summary,
			&in.Details,
			&in.Attachment,
			&in.OccurredAt,
			&in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction rows: %w", err)
	}
	return interactions, nil
}
