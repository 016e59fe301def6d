package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestCopilotRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewCopilotRepository(db)

	cp := newCopilot(t, db, "Ana", "design", "branding")
	require.Equal(t, "COP001", cp.ID)

	got, err := repo.Get(ctx, cp.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"design", "branding"}, []string(got.Specialties))

	got.HourlyRate = 85
	got.Specialties = []string{"design"}
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx, cp.ID)
	require.NoError(t, err)
	require.Equal(t, 85.0, updated.HourlyRate)
	require.Equal(t, []string{"design"}, []string(updated.Specialties))

	require.NoError(t, repo.Delete(ctx, cp.ID))
	_, err = repo.Get(ctx, cp.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, cp.ID), repository.ErrNotFound)
}

func TestCopilotRepository_ListBySpecialty(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewCopilotRepository(db)

	newCopilot(t, db, "Ana", "design", "seo")
	newCopilot(t, db, "Bo", "seo")
	newCopilot(t, db, "Cy", "seo-audit")

	seo, err := repo.List(ctx, copilot.ListOptions{Specialty: "seo"})
	require.NoError(t, err)
	require.Len(t, seo, 2, "exact element match, not substring")

	design, err := repo.List(ctx, copilot.ListOptions{Specialty: "design"})
	require.NoError(t, err)
	require.Len(t, design, 1)
	require.Equal(t, "Ana", design[0].Name)

	byName, err := repo.List(ctx, copilot.ListOptions{Query: "bo"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
}
