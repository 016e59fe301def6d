package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/repository"
)

const projectColumns = `p.id, p.client_id, p.jump_id, p.name, p.description, p.status, p.start_date, p.end_date, p.budget, p.created_at, p.updated_at`

var projectDependents = []dependent{
	{table: "invoices", column: "project_id", label: "invoices"},
}

func scanProject(s rowScanner) (*project.Project, error) {
	var p project.Project
	var jumpID sql.NullString
	err := s.Scan(
		&p.ID,
		&p.ClientID,
		&jumpID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.Budget,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if jumpID.Valid {
		p.JumpID = &jumpID.String
	}
	return &p, nil
}

func projectReferences(p *project.Project) []parentRef {
	return []parentRef{
		{table: "clients", label: "client", id: p.ClientID},
		{table: "jumps", label: "jump", id: derefID(p.JumpID)},
	}
}

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create assigns the next PRJ identifier and inserts the project. The client
// and optional jump are checked in the same transaction.
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	id, err := r.db.createWithID(ctx, ident.Project, func(tx *sql.Tx, id string) error {
		if err := requireReferences(ctx, tx, projectReferences(p)...); err != nil {
			return err
		}
		query := `
			INSERT INTO projects (id, client_id, jump_id, name, description, status, start_date, end_date, budget, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			id,
			p.ClientID,
			nullable(p.JumpID),
			p.Name,
			p.Description,
			p.Status,
			p.StartDate,
			p.EndDate,
			p.Budget,
			p.CreatedAt,
			p.UpdatedAt,
		)
		if err != nil {
			return writeError(err, "create", "project")
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns projects matching the filters, newest first
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	var f filter
	f.addIf("p.client_id", opts.ClientID)
	f.addIf("p.jump_id", opts.JumpID)
	f.addIf("p.status", opts.Status)
	f.addSearch(opts.Query, "p.name", "p.description")

	query := `SELECT ` + projectColumns + ` FROM projects p` + f.where() +
		` ORDER BY p.created_at DESC, p.rowid DESC` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update overwrites the mutable project fields, re-checking references
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := requireReferences(ctx, tx, projectReferences(p)...); err != nil {
			return err
		}
		query := `
			UPDATE projects
			SET client_id = ?, jump_id = ?, name = ?, description = ?, status = ?,
				start_date = ?, end_date = ?, budget = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			p.ClientID,
			nullable(p.JumpID),
			p.Name,
			p.Description,
			p.Status,
			p.StartDate,
			p.EndDate,
			p.Budget,
			p.UpdatedAt,
			p.ID,
		)
		if err != nil {
			return writeError(err, "update", "project")
		}
		return expectOneRow(result)
	})
}

// Delete removes a project with its tasks and links. Invoices billed against
// the project block the deletion.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := rejectDependents(ctx, tx, "project", id, projectDependents...); err != nil {
			return err
		}
		return deleteRow(ctx, tx, "projects", "project", id)
	})
}

// AssignCopilot ensures the (project, copilot) pair exists. A non-empty role
// replaces the stored one.
func (r *ProjectRepository) AssignCopilot(ctx context.Context, projectID string, a project.AssignmentRequest) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return assignCopilot(ctx, tx, projectID, a)
	})
}

func assignCopilot(ctx context.Context, tx *sql.Tx, projectID string, a project.AssignmentRequest) error {
	err := requireReferences(ctx, tx,
		parentRef{table: "projects", label: "project", id: projectID},
		parentRef{table: "copilots", label: "copilot", id: a.CopilotID},
	)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO project_copilots (project_id, copilot_id, role) VALUES (?, ?, ?)
		ON CONFLICT(project_id, copilot_id) DO UPDATE
		SET role = CASE WHEN excluded.role = '' THEN project_copilots.role ELSE excluded.role END
	`
	if _, err := tx.ExecContext(ctx, query, projectID, a.CopilotID, a.Role); err != nil {
		return writeError(err, "assign", "project copilot")
	}
	return nil
}

// UnassignCopilot removes the pair if present
func (r *ProjectRepository) UnassignCopilot(ctx context.Context, projectID, copilotID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM project_copilots WHERE project_id = ? AND copilot_id = ?`, projectID, copilotID)
	if err != nil {
		return fmt.Errorf("failed to unassign copilot: %w", err)
	}
	return nil
}

// SetCopilots replaces every assignment of the project atomically
func (r *ProjectRepository) SetCopilots(ctx context.Context, projectID string, assignments []project.AssignmentRequest) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := requireReferences(ctx, tx, parentRef{table: "projects", label: "project", id: projectID}); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_copilots WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear project copilots: %w", err)
		}
		for _, a := range assignments {
			if err := assignCopilot(ctx, tx, projectID, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCopilots returns the copilots assigned to a project
func (r *ProjectRepository) ListCopilots(ctx context.Context, projectID string) ([]project.Assignment, error) {
	query := `
		SELECT ` + copilotColumns + `, pc.role, pc.assigned_at
		FROM project_copilots pc
		JOIN copilots cp ON cp.id = pc.copilot_id
		WHERE pc.project_id = ?
		ORDER BY cp.name, cp.id
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project copilots: %w", err)
	}
	defer rows.Close()

	assignments := []project.Assignment{}
	for rows.Next() {
		var a project.Assignment
		dest := append(copilotFields(&a.Copilot), &a.ProjectRole, &a.AssignedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan project copilot: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project copilot rows: %w", err)
	}
	return assignments, nil
}

// LinkReferral ensures the (project, referral) pair exists
func (r *ProjectRepository) LinkReferral(ctx context.Context, projectID, referralID string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := requireReferences(ctx, tx,
			parentRef{table: "projects", label: "project", id: projectID},
			parentRef{table: "referrals", label: "referral", id: referralID},
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_referrals (project_id, referral_id) VALUES (?, ?) ON CONFLICT(project_id, referral_id) DO NOTHING`,
			projectID, referralID,
		)
		if err != nil {
			return writeError(err, "link", "project referral")
		}
		return nil
	})
}

// ListReferrals returns the referrals linked to a project
func (r *ProjectRepository) ListReferrals(ctx context.Context, projectID string) ([]referral.Referral, error) {
	query := `
		SELECT ` + referralColumns + `
		FROM project_referrals pr
		JOIN referrals rf ON rf.id = pr.referral_id
		WHERE pr.project_id = ?
		ORDER BY pr.linked_at, rf.rowid
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project referrals: %w", err)
	}
	return collectReferrals(rows)
}
