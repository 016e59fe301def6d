package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one ordered schema step. apply must be idempotent: it may run
// against a database that legacy scripts already partially altered.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{1, "core_schema", execAll(coreSchema...)},
	{2, "reference_values", execAll(referenceSchema...)},
	{3, "clients_sector", migrateClientSector},
	{4, "jumps_images", migrateJumpImages},
	{5, "activity_log", execAll(activitySchema...)},
	{6, "api_keys_usage", migrateAPIKeyUsage},
}

// LatestSchemaVersion is the highest migration version this binary knows.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every pending migration in order. Each migration and its
// schema_migrations ledger row commit together.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for version := range applied {
		if version > LatestSchemaVersion() {
			return fmt.Errorf("database schema version %d is newer than supported %d", version, LatestSchemaVersion())
		}
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := m.apply(ctx, tx); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 for a fresh database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		if !tableExists(ctx, db, "schema_migrations") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func execAll(statements ...string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

func tableExists(ctx context.Context, q querier, table string) bool {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	return err == nil
}

func tableHasColumn(ctx context.Context, q querier, table, column string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

// addColumn runs ALTER TABLE ADD COLUMN only when the column is missing.
func addColumn(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	exists, err := tableHasColumn(ctx, tx, table, column)
	if err != nil || exists {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition)); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}

func migrateClientSector(ctx context.Context, tx *sql.Tx) error {
	if err := addColumn(ctx, tx, "clients", "sector", "TEXT NOT NULL DEFAULT 'other'"); err != nil {
		return err
	}
	return execAll(
		`UPDATE clients SET sector = 'other' WHERE sector IS NULL OR TRIM(sector) = ''`,
		`CREATE INDEX IF NOT EXISTS idx_clients_sector ON clients(sector)`,
	)(ctx, tx)
}

func migrateJumpImages(ctx context.Context, tx *sql.Tx) error {
	if err := addColumn(ctx, tx, "jumps", "images", "TEXT NOT NULL DEFAULT '[]'"); err != nil {
		return err
	}
	return execAll(
		`UPDATE jumps SET images = '[]' WHERE images IS NULL OR TRIM(images) = '' OR TRIM(images) = 'null'`,
		`UPDATE jumps SET features = '[]' WHERE features IS NULL OR TRIM(features) = '' OR TRIM(features) = 'null'`,
	)(ctx, tx)
}

func migrateAPIKeyUsage(ctx context.Context, tx *sql.Tx) error {
	if err := addColumn(ctx, tx, "api_keys", "last_used_at", "TIMESTAMP"); err != nil {
		return err
	}
	return addColumn(ctx, tx, "api_keys", "revoked_at", "TIMESTAMP")
}

var coreSchema = []string{
	`CREATE TABLE IF NOT EXISTS id_counters (
		prefix TEXT PRIMARY KEY,
		counter INTEGER NOT NULL DEFAULT 0 CHECK (counter >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'lead',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status)`,

	`CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		summary TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		attachment TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_client ON interactions(client_id)`,

	`CREATE TABLE IF NOT EXISTS jumps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0 CHECK (price >= 0),
		duration_weeks INTEGER NOT NULL DEFAULT 0,
		features TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS jump_clients (
		jump_id TEXT NOT NULL REFERENCES jumps(id) ON DELETE CASCADE,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		linked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (jump_id, client_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jump_clients_client ON jump_clients(client_id)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		jump_id TEXT REFERENCES jumps(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'planned',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		budget REAL NOT NULL DEFAULT 0 CHECK (budget >= 0),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_jump ON projects(jump_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo',
		due_date TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	`CREATE TABLE IF NOT EXISTS copilots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		specialties TEXT NOT NULL DEFAULT '[]',
		hourly_rate REAL NOT NULL DEFAULT 0 CHECK (hourly_rate >= 0),
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS project_copilots (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		copilot_id TEXT NOT NULL REFERENCES copilots(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT '',
		assigned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, copilot_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_copilots_copilot ON project_copilots(copilot_id)`,

	`CREATE TABLE IF NOT EXISTS referrals (
		id TEXT PRIMARY KEY,
		referrer_client_id TEXT NOT NULL REFERENCES clients(id),
		referred_name TEXT NOT NULL,
		referred_email TEXT NOT NULL DEFAULT '',
		referred_company TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		converted_client_id TEXT REFERENCES clients(id),
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals(referrer_client_id)`,

	`CREATE TABLE IF NOT EXISTS project_referrals (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		referral_id TEXT NOT NULL REFERENCES referrals(id) ON DELETE CASCADE,
		linked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, referral_id)
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		project_id TEXT REFERENCES projects(id),
		jump_id TEXT REFERENCES jumps(id),
		status TEXT NOT NULL DEFAULT 'draft',
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		total REAL NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_project ON invoices(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status)`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		quantity REAL NOT NULL CHECK (quantity > 0),
		unit_price REAL NOT NULL CHECK (unit_price >= 0),
		amount REAL NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		key_hash TEXT NOT NULL UNIQUE,
		key_prefix TEXT NOT NULL,
		scopes TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var referenceSchema = []string{
	`CREATE TABLE IF NOT EXISTS reference_values (
		category TEXT NOT NULL,
		value TEXT NOT NULL,
		label TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (category, value)
	)`,
	`INSERT OR IGNORE INTO reference_values (category, value, label, sort_order) VALUES
		('sector', 'technology', 'Technology', 1),
		('sector', 'retail', 'Retail', 2),
		('sector', 'healthcare', 'Healthcare', 3),
		('sector', 'finance', 'Finance', 4),
		('sector', 'education', 'Education', 5),
		('sector', 'hospitality', 'Hospitality', 6),
		('sector', 'manufacturing', 'Manufacturing', 7),
		('sector', 'real_estate', 'Real estate', 8),
		('sector', 'nonprofit', 'Nonprofit', 9),
		('sector', 'other', 'Other', 99),
		('client_status', 'lead', 'Lead', 1),
		('client_status', 'active', 'Active', 2),
		('client_status', 'inactive', 'Inactive', 3),
		('client_status', 'churned', 'Churned', 4),
		('interaction_type', 'call', 'Call', 1),
		('interaction_type', 'email', 'Email', 2),
		('interaction_type', 'meeting', 'Meeting', 3),
		('interaction_type', 'note', 'Note', 4),
		('jump_status', 'draft', 'Draft', 1),
		('jump_status', 'active', 'Active', 2),
		('jump_status', 'archived', 'Archived', 3),
		('project_status', 'planned', 'Planned', 1),
		('project_status', 'in_progress', 'In progress', 2),
		('project_status', 'on_hold', 'On hold', 3),
		('project_status', 'completed', 'Completed', 4),
		('project_status', 'cancelled', 'Cancelled', 5),
		('task_status', 'todo', 'To do', 1),
		('task_status', 'in_progress', 'In progress', 2),
		('task_status', 'done', 'Done', 3),
		('copilot_status', 'active', 'Active', 1),
		('copilot_status', 'inactive', 'Inactive', 2),
		('referral_status', 'pending', 'Pending', 1),
		('referral_status', 'contacted', 'Contacted', 2),
		('referral_status', 'converted', 'Converted', 3),
		('referral_status', 'declined', 'Declined', 4),
		('invoice_status', 'draft', 'Draft', 1),
		('invoice_status', 'sent', 'Sent', 2),
		('invoice_status', 'overdue', 'Overdue', 3),
		('invoice_status', 'paid', 'Paid', 4),
		('invoice_status', 'cancelled', 'Cancelled', 5)`,
}

var activitySchema = []string{
	`CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		summary TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_log(entity_type, entity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at)`,
}
