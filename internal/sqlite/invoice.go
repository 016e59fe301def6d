package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/repository"
)

const invoiceColumns = `id, client_id, project_id, jump_id, status, issue_date, due_date, total, notes, created_at, updated_at`

func scanInvoice(s rowScanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	var projectID, jumpID sql.NullString
	err := s.Scan(
		&inv.ID,
		&inv.ClientID,
		&projectID,
		&jumpID,
		&inv.Status,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Total,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if projectID.Valid {
		inv.ProjectID = &projectID.String
	}
	if jumpID.Valid {
		inv.JumpID = &jumpID.String
	}
	return &inv, nil
}

// InvoiceRepository implements invoice.Repository for SQLite
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create assigns the next INV identifier and inserts the invoice and its
// items. Each item draws its own ITM identifier from the same transaction.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	var items []invoice.Item
	var total float64
	id, err := r.db.createWithID(ctx, ident.Invoice, func(tx *sql.Tx, id string) error {
		err := requireReferences(ctx, tx,
			parentRef{table: "clients", label: "client", id: inv.ClientID},
			parentRef{table: "projects", label: "project", id: derefID(inv.ProjectID)},
			parentRef{table: "jumps", label: "jump", id: derefID(inv.JumpID)},
		)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO invoices (id, client_id, project_id, jump_id, status, issue_date, due_date, total, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			id,
			inv.ClientID,
			nullable(inv.ProjectID),
			nullable(inv.JumpID),
			inv.Status,
			inv.IssueDate,
			inv.DueDate,
			inv.Notes,
			inv.CreatedAt,
			inv.UpdatedAt,
		)
		if err != nil {
			return writeError(err, "create", "invoice")
		}

		items = make([]invoice.Item, len(inv.Items))
		for i, item := range inv.Items {
			item.InvoiceID = id
			if err := insertItem(ctx, tx, &item); err != nil {
				return err
			}
			items[i] = item
		}
		total, err = refreshTotal(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	recordIssued(ident.InvoiceItem, len(items))
	inv.ID = id
	inv.Items = items
	inv.Total = total
	return nil
}

// insertItem draws an ITM identifier and inserts item. Callers refresh the
// invoice total afterwards.
func insertItem(ctx context.Context, tx *sql.Tx, item *invoice.Item) error {
	id, err := nextID(ctx, tx, ident.InvoiceItem)
	if err != nil {
		return err
	}
	amount, err := invoice.ItemAmount(item.Quantity, item.UnitPrice)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, amount, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		item.InvoiceID,
		item.Description,
		item.Quantity,
		item.UnitPrice,
		amount,
		item.Position,
		item.CreatedAt,
	)
	if err != nil {
		return writeError(err, "create", "invoice item")
	}
	item.ID = id
	item.Amount = amount
	return nil
}

// refreshTotal recomputes the stored total from the items.
func refreshTotal(ctx context.Context, tx *sql.Tx, invoiceID string) (float64, error) {
	var total float64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(ROUND(SUM(amount), 2), 0) FROM invoice_items WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum invoice items: %w", err)
	}
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return 0, fmt.Errorf("%w: total of invoice %s is out of range", invoice.ErrInvalidInput, invoiceID)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE invoices SET total = ? WHERE id = ?`, total, invoiceID); err != nil {
		return 0, fmt.Errorf("failed to update invoice total: %w", err)
	}
	return total, nil
}

// Get retrieves an invoice by ID with its items
func (r *InvoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return getInvoice(ctx, r.db, id)
}

func getInvoice(ctx context.Context, q querier, id string) (*invoice.Invoice, error) {
	inv, err := scanInvoice(q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	inv.Items, err = listItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns invoices matching the filters, most recently issued first.
// Items are not loaded.
func (r *InvoiceRepository) List(ctx context.Context, opts invoice.ListOptions) ([]invoice.Invoice, error) {
	var f filter
	f.addIf("client_id", opts.ClientID)
	f.addIf("project_id", opts.ProjectID)
	f.addIf("status", opts.Status)

	query := `SELECT ` + invoiceColumns + ` FROM invoices` + f.where() +
		` ORDER BY issue_date DESC, rowid DESC` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// Update overwrites status, dates and notes. Totals are owned by the items.
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, issue_date = ?, due_date = ?, notes = ?, updated_at = ? WHERE id = ?`,
		inv.Status, inv.IssueDate, inv.DueDate, inv.Notes, inv.UpdatedAt, inv.ID,
	)
	if err != nil {
		return writeError(err, "update", "invoice")
	}
	return expectOneRow(result)
}

// Delete removes an invoice; items cascade
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "invoices", "invoice", id)
}

// AddItem appends an item to a draft invoice and refreshes its total
func (r *InvoiceRepository) AddItem(ctx context.Context, item *invoice.Item) (*invoice.Invoice, error) {
	var updated *invoice.Invoice
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := requireDraft(ctx, tx, item.InvoiceID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM invoice_items WHERE invoice_id = ?`,
			item.InvoiceID,
		).Scan(&item.Position); err != nil {
			return fmt.Errorf("failed to compute item position: %w", err)
		}
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
		if err := touchInvoice(ctx, tx, item.InvoiceID); err != nil {
			return err
		}
		var err error
		updated, err = getInvoice(ctx, tx, item.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	recordIssued(ident.InvoiceItem, 1)
	return updated, nil
}

// DeleteItem removes an item from a draft invoice and refreshes its total
func (r *InvoiceRepository) DeleteItem(ctx context.Context, invoiceID, itemID string) (*invoice.Invoice, error) {
	var updated *invoice.Invoice
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := requireDraft(ctx, tx, invoiceID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE id = ? AND invoice_id = ?`, itemID, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to delete invoice item: %w", err)
		}
		if err := expectOneRow(result); err != nil {
			return err
		}
		if err := touchInvoice(ctx, tx, invoiceID); err != nil {
			return err
		}
		updated, err = getInvoice(ctx, tx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListItems returns an invoice's items in position order
func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceID string) ([]invoice.Item, error) {
	if err := requireReferences(ctx, r.db, parentRef{table: "invoices", label: "invoice", id: invoiceID}); err != nil {
		return nil, err
	}
	return listItems(ctx, r.db, invoiceID)
}

func listItems(ctx context.Context, q querier, invoiceID string) ([]invoice.Item, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, amount, position, created_at
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position, rowid
	`
	rows, err := q.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	items := []invoice.Item{}
	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.Amount,
			&item.Position,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice item rows: %w", err)
	}
	return items, nil
}

func requireDraft(ctx context.Context, tx *sql.Tx, invoiceID string) error {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM invoices WHERE id = ?`, invoiceID).Scan(&status)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read invoice status: %w", err)
	}
	if status != invoice.StatusDraft {
		return fmt.Errorf("%w: %s is %s", invoice.ErrInvoiceLocked, invoiceID, status)
	}
	return nil
}

func touchInvoice(ctx context.Context, tx *sql.Tx, invoiceID string) error {
	if _, err := refreshTotal(ctx, tx, invoiceID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `UPDATE invoices SET updated_at = ? WHERE id = ?`, time.Now().UTC(), invoiceID)
	if err != nil {
		return fmt.Errorf("failed to touch invoice: %w", err)
	}
	return nil
}
