package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestJumpRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewJumpRepository(db)

	j := &jump.Jump{
		Name:          "Brand Launch",
		Category:      "marketing",
		Price:         4500,
		DurationWeeks: 6,
		Features:      []string{"logo", "site"},
		Status:        "active",
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
	require.NoError(t, repo.Create(ctx, j))
	require.Equal(t, "JMP001", j.ID)

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"logo", "site"}, []string(got.Features))
	require.NotNil(t, got.Images)
	require.Empty(t, got.Images)

	got.Features = append(got.Features, "copy")
	got.Price = 5000
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"logo", "site", "copy"}, []string(updated.Features))
	require.Equal(t, 5000.0, updated.Price)

	list, err := repo.List(ctx, jump.ListOptions{Category: "marketing"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List(ctx, jump.ListOptions{Query: "launch"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, j.ID))
	_, err = repo.Get(ctx, j.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJumpRepository_LegacyNullArrays(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO jumps (id, name, features, images) VALUES ('JMP050', 'Old', '', 'null')`)
	require.NoError(t, err)

	j, err := NewJumpRepository(db).Get(ctx, "JMP050")
	require.NoError(t, err)
	require.Equal(t, []string{}, []string(j.Features))
	require.Equal(t, []string{}, []string(j.Images))
}

func TestJumpRepository_ClientLinks(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewJumpRepository(db)

	j := newJump(t, db, "Launch")
	a := newClient(t, db, "A")
	b := newClient(t, db, "B")

	require.NoError(t, repo.LinkClient(ctx, j.ID, a.ID))
	require.NoError(t, repo.LinkClient(ctx, j.ID, a.ID), "linking twice is a no-op")
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM jump_clients WHERE jump_id = ?`, j.ID))

	require.ErrorIs(t, repo.LinkClient(ctx, j.ID, "CLI404"), repository.ErrMissingReference)
	require.ErrorIs(t, repo.LinkClient(ctx, "JMP404", a.ID), repository.ErrMissingReference)

	forClient, err := repo.ListForClient(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, forClient, 1)
	require.Equal(t, j.ID, forClient[0].ID)

	require.NoError(t, repo.SetClients(ctx, j.ID, []string{b.ID}))
	clients, err := repo.ListClients(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, b.ID, clients[0].ID)

	// A missing client aborts the whole replacement.
	err = repo.SetClients(ctx, j.ID, []string{a.ID, "CLI404"})
	require.ErrorIs(t, err, repository.ErrMissingReference)
	clients, err = repo.ListClients(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, b.ID, clients[0].ID)

	require.NoError(t, repo.UnlinkClient(ctx, j.ID, b.ID))
	require.NoError(t, repo.UnlinkClient(ctx, j.ID, b.ID))
	clients, err = repo.ListClients(ctx, j.ID)
	require.NoError(t, err)
	require.Empty(t, clients)
}

func TestJumpRepository_AddImage(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewJumpRepository(db)
	j := newJump(t, db, "Launch")

	updated, err := repo.AddImage(ctx, j.ID, "a.png")
	require.NoError(t, err)
	require.Equal(t, []string{"a.png"}, []string(updated.Images))

	updated, err = repo.AddImage(ctx, j.ID, "b.jpg")
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.jpg"}, []string(updated.Images))

	stored, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.jpg"}, []string(stored.Images))

	_, err = repo.AddImage(ctx, "JMP404", "c.png")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJumpRepository_DeleteRejectsDependents(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewJumpRepository(db)

	c := newClient(t, db, "Acme")
	j := newJump(t, db, "Launch")
	p := newProject(t, db, c.ID, &j.ID, "Site")

	err := repo.Delete(ctx, j.ID)
	require.ErrorIs(t, err, repository.ErrHasDependents)

	require.NoError(t, NewProjectRepository(db).Delete(ctx, p.ID))

	inv := &invoice.Invoice{ClientID: c.ID, JumpID: &j.ID, Status: invoice.StatusDraft, IssueDate: "2024-05-01", CreatedAt: testTime, UpdatedAt: testTime}
	require.NoError(t, NewInvoiceRepository(db).Create(ctx, inv))
	require.ErrorIs(t, repo.Delete(ctx, j.ID), repository.ErrHasDependents)

	require.NoError(t, NewInvoiceRepository(db).Delete(ctx, inv.ID))
	require.NoError(t, repo.Delete(ctx, j.ID))
}
