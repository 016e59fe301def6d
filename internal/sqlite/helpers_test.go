package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func stringPtr(s string) *string {
	return &s
}

func newClient(t *testing.T, db *DB, name string) *client.Client {
	t.Helper()
	c := &client.Client{
		Name:      name,
		Sector:    "other",
		Status:    "lead",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, NewClientRepository(db).Create(context.Background(), c))
	return c
}

func newJump(t *testing.T, db *DB, name string) *jump.Jump {
	t.Helper()
	j := &jump.Jump{
		Name:      name,
		Status:    "active",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, NewJumpRepository(db).Create(context.Background(), j))
	return j
}

func newProject(t *testing.T, db *DB, clientID string, jumpID *string, name string) *project.Project {
	t.Helper()
	p := &project.Project{
		ClientID:  clientID,
		JumpID:    jumpID,
		Name:      name,
		Status:    "planned",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, NewProjectRepository(db).Create(context.Background(), p))
	return p
}

func newCopilot(t *testing.T, db *DB, name string, specialties ...string) *copilot.Copilot {
	t.Helper()
	c := &copilot.Copilot{
		Name:        name,
		Specialties: specialties,
		Status:      "active",
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	require.NoError(t, NewCopilotRepository(db).Create(context.Background(), c))
	return c
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
