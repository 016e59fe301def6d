package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/repository"
)

const taskColumns = `id, project_id, title, status, due_date, created_at, updated_at`

func taskFields(t *project.Task) []any {
	return []any{&t.ID, &t.ProjectID, &t.Title, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt}
}

// TaskRepository implements project.TaskRepository for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create assigns the next TSK identifier and inserts the task
func (r *TaskRepository) Create(ctx context.Context, t *project.Task) error {
	id, err := r.db.createWithID(ctx, ident.Task, func(tx *sql.Tx, id string) error {
		if err := requireReferences(ctx, tx, parentRef{table: "projects", label: "project", id: t.ProjectID}); err != nil {
			return err
		}
		query := `
			INSERT INTO tasks (id, project_id, title, status, due_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query, id, t.ProjectID, t.Title, t.Status, t.DueDate, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return writeError(err, "create", "task")
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*project.Task, error) {
	var t project.Task
	err := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id).Scan(taskFields(&t)...)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// List returns tasks ordered by due date, undated tasks last
func (r *TaskRepository) List(ctx context.Context, opts project.TaskListOptions) ([]project.Task, error) {
	var f filter
	f.addIf("project_id", opts.ProjectID)
	f.addIf("status", opts.Status)

	query := `SELECT ` + taskColumns + ` FROM tasks` + f.where() +
		` ORDER BY due_date = '', due_date, rowid` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []project.Task{}
	for rows.Next() {
		var t project.Task
		if err := rows.Scan(taskFields(&t)...); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// Update overwrites the mutable task fields
func (r *TaskRepository) Update(ctx context.Context, t *project.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, status = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Status, t.DueDate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return writeError(err, "update", "task")
	}
	return expectOneRow(result)
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "tasks", "task", id)
}
