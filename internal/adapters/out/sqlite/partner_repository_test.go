package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

func TestPartnerLookups(t *testing.T) {
	store := newTestStore(t)
	repo := NewPartnerRepository(store)
	ctx := context.Background()

	id, err := store.CreatePartner(ctx, domain.Partner{
		Name:        "jobseeker",
		DisplayName: "Test Person",
		Phone:       "010-123",
		CustomerNr:  "C1",
		Pnr:         "19900101-1234",
	})
	require.NoError(t, err)

	byID, err := repo.GetPartnerByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test Person", byID.DisplayName)

	byNr, err := repo.GetPartnerByCustomerNr(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, id, byNr.ID)

	byPnr, err := repo.GetPartnerByPnr(ctx, "19900101-1234")
	require.NoError(t, err)
	assert.Equal(t, id, byPnr.ID)

	byName, err := repo.GetPartnerByName(ctx, "jobseeker")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	_, err = repo.GetPartnerByCustomerNr(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePartnerPnr(t *testing.T) {
	store := newTestStore(t)
	repo := NewPartnerRepository(store)
	ctx := context.Background()

	_, err := store.CreatePartner(ctx, domain.Partner{
		Name:       "jobseeker",
		CustomerNr: "C1",
		Pnr:        "19900101-1234",
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePartnerPnr(ctx, "C1", "19900101-5678"))

	updated, err := repo.GetPartnerByCustomerNr(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "19900101-5678", updated.Pnr)

	assert.ErrorIs(t, repo.UpdatePartnerPnr(ctx, "nope", "x"), domain.ErrNotFound)
}
