package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestClientRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClientRepository(db)

	c := &client.Client{
		Name:      "Acme Bakery",
		Company:   "Acme",
		Email:     "hello@acme.test",
		Sector:    "retail",
		Status:    "lead",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, repo.Create(ctx, c))
	require.Equal(t, "CLI001", c.ID)

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Bakery", got.Name)
	require.Equal(t, "retail", got.Sector)
	require.True(t, got.CreatedAt.Equal(testTime))

	got.Status = "active"
	got.UpdatedAt = testTime.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "active", updated.Status)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.Get(ctx, c.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, c.ID), repository.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, got), repository.ErrNotFound)
}

func TestClientRepository_SearchIsLiteral(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClientRepository(db)

	for _, name := range []string{"100% Organic", "Snake_Case Labs", `Back\slash Ltd`, "Plain Bakery"} {
		require.NoError(t, repo.Create(ctx, &client.Client{Name: name, Sector: "retail", Status: "lead", CreatedAt: testTime, UpdatedAt: testTime}))
	}

	for q, want := range map[string]string{
		"%":  "100% Organic",
		"_":  "Snake_Case Labs",
		`\`: `Back\slash Ltd`,
	} {
		found, err := repo.List(ctx, client.ListOptions{Query: q})
		require.NoError(t, err)
		require.Len(t, found, 1, q)
		require.Equal(t, want, found[0].Name)
	}
}

func TestClientRepository_List(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClientRepository(db)

	for i, tc := range []struct{ name, sector, status string }{
		{"Alpha Dental", "healthcare", "active"},
		{"Beta Books", "retail", "lead"},
		{"Gamma Clinic", "healthcare", "lead"},
	} {
		c := &client.Client{
			Name:      tc.name,
			Sector:    tc.sector,
			Status:    tc.status,
			CreatedAt: testTime.Add(time.Duration(i) * time.Minute),
			UpdatedAt: testTime,
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.List(ctx, client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Gamma Clinic", all[0].Name, "newest first")

	health, err := repo.List(ctx, client.ListOptions{Sector: "healthcare"})
	require.NoError(t, err)
	require.Len(t, health, 2)

	leads, err := repo.List(ctx, client.ListOptions{Sector: "healthcare", Status: "lead"})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, "CLI003", leads[0].ID)

	found, err := repo.List(ctx, client.ListOptions{Query: "BOOKS"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Beta Books", found[0].Name)

	page, err := repo.List(ctx, client.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "Beta Books", page[0].Name)

	none, err := repo.List(ctx, client.ListOptions{Status: "churned"})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestClientRepository_Interactions(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClientRepository(db)
	c := newClient(t, db, "Acme")

	for i, summary := range []string{"intro call", "follow-up"} {
		in := &client.Interaction{
			ClientID:   c.ID,
			Type:       "call",
			Summary:    summary,
			OccurredAt: testTime.Add(time.Duration(i) * 24 * time.Hour),
			CreatedAt:  testTime,
		}
		require.NoError(t, repo.AddInteraction(ctx, in))
	}

	interactions, err := repo.ListInteractions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	require.Equal(t, "INT002", interactions[0].ID)
	require.Equal(t, "follow-up", interactions[0].Summary)

	err = repo.AddInteraction(ctx, &client.Interaction{ClientID: "CLI404", Type: "note", Summary: "x", OccurredAt: testTime, CreatedAt: testTime})
	require.ErrorIs(t, err, repository.ErrMissingReference)

	// Interactions are owned by the client.
	require.NoError(t, repo.Delete(ctx, c.ID))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM interactions`))
}

func TestClientRepository_DeleteRejectsDependents(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClientRepository(db)

	t.Run("project", func(t *testing.T) {
		c := newClient(t, db, "Has project")
		newProject(t, db, c.ID, nil, "Site")

		err := repo.Delete(ctx, c.ID)
		require.ErrorIs(t, err, repository.ErrHasDependents)
		require.Contains(t, err.Error(), "1 projects")

		_, err = repo.Get(ctx, c.ID)
		require.NoError(t, err)
	})

	t.Run("invoice", func(t *testing.T) {
		c := newClient(t, db, "Has invoice")
		inv := &invoice.Invoice{ClientID: c.ID, Status: invoice.StatusDraft, IssueDate: "2024-05-01", CreatedAt: testTime, UpdatedAt: testTime}
		require.NoError(t, NewInvoiceRepository(db).Create(ctx, inv))

		require.ErrorIs(t, repo.Delete(ctx, c.ID), repository.ErrHasDependents)
	})

	t.Run("referral", func(t *testing.T) {
		c := newClient(t, db, "Referrer")
		ref := &referral.Referral{ReferrerClientID: c.ID, ReferredName: "Friend", Status: referral.StatusPending, CreatedAt: testTime, UpdatedAt: testTime}
		require.NoError(t, NewReferralRepository(db).Create(ctx, ref))

		err := repo.Delete(ctx, c.ID)
		require.ErrorIs(t, err, repository.ErrHasDependents)
		require.Contains(t, err.Error(), "referrals made")
	})

	t.Run("jump links cascade", func(t *testing.T) {
		c := newClient(t, db, "Linked")
		j := newJump(t, db, "Launch")
		require.NoError(t, NewJumpRepository(db).LinkClient(ctx, j.ID, c.ID))

		require.NoError(t, repo.Delete(ctx, c.ID))
		require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM jump_clients WHERE client_id = ?`, c.ID))
		_, err := NewJumpRepository(db).Get(ctx, j.ID)
		require.NoError(t, err)
	})
}
