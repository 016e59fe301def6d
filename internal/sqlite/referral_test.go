package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func newReferral(t *testing.T, db *DB, referrerID, name string) *referral.Referral {
	t.Helper()
	ref := &referral.Referral{
		ReferrerClientID: referrerID,
		ReferredName:     name,
		ReferredEmail:    "friend@example.test",
		Status:           referral.StatusPending,
		CreatedAt:        testTime,
		UpdatedAt:        testTime,
	}
	require.NoError(t, NewReferralRepository(db).Create(context.Background(), ref))
	return ref
}

func TestReferralRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewReferralRepository(db)
	c := newClient(t, db, "Acme")

	ref := newReferral(t, db, c.ID, "Friend Co")
	require.Equal(t, "REF001", ref.ID)

	got, err := repo.Get(ctx, ref.ID)
	require.NoError(t, err)
	require.Nil(t, got.ConvertedClientID)

	got.Status = "contacted"
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.List(ctx, referral.ListOptions{ReferrerClientID: c.ID, Status: "contacted"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = repo.Create(ctx, &referral.Referral{ReferrerClientID: "CLI404", ReferredName: "x", Status: referral.StatusPending, CreatedAt: testTime, UpdatedAt: testTime})
	require.ErrorIs(t, err, repository.ErrMissingReference)

	require.NoError(t, repo.Delete(ctx, ref.ID))
	_, err = repo.Get(ctx, ref.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReferralRepository_Convert(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewReferralRepository(db)
	referrer := newClient(t, db, "Acme")
	ref := newReferral(t, db, referrer.ID, "Friend Co")

	newcomer := &client.Client{
		Name:      ref.ReferredName,
		Email:     ref.ReferredEmail,
		Sector:    "other",
		Status:    "lead",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	converted, err := repo.Convert(ctx, ref.ID, newcomer)
	require.NoError(t, err)
	require.Equal(t, "CLI002", newcomer.ID)
	require.Equal(t, referral.StatusConverted, converted.Status)
	require.NotNil(t, converted.ConvertedClientID)
	require.Equal(t, newcomer.ID, *converted.ConvertedClientID)

	stored, err := NewClientRepository(db).Get(ctx, newcomer.ID)
	require.NoError(t, err)
	require.Equal(t, "Friend Co", stored.Name)

	again := &client.Client{Name: "dup", Sector: "other", Status: "lead", CreatedAt: testTime, UpdatedAt: testTime}
	_, err = repo.Convert(ctx, ref.ID, again)
	require.ErrorIs(t, err, referral.ErrAlreadyConverted)
	require.ErrorIs(t, err, repository.ErrConflict)

	current, err := NewSequence(db).Current(ctx, ident.Client)
	require.NoError(t, err)
	require.EqualValues(t, 2, current, "failed conversion does not consume a client id")

	_, err = repo.Convert(ctx, "REF404", again)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// The converted client is now referenced by the referral.
	err = NewClientRepository(db).Delete(ctx, newcomer.ID)
	require.ErrorIs(t, err, repository.ErrHasDependents)
	require.Contains(t, err.Error(), "converted referrals")
}
