package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func TestCampaignRepository(t *testing.T) {
	repo := postgres.NewCampaignRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "Curse of the Reeds")
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.False(t, created.CombatActive)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.Create(ctx, "Curse of the Reeds")
		assert.ErrorIs(t, err, campaign.ErrNameTaken)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := repo.Create(ctx, "  ")
		assert.Error(t, err)
	})

	t.Run("lookup", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, byID.Name)

		byName, err := repo.GetByName(ctx, created.Name)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)

		_, err = repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, campaign.ErrNotFound)
		_, err = repo.GetByName(ctx, "nope")
		assert.ErrorIs(t, err, campaign.ErrNotFound)
	})

	t.Run("combat signal", func(t *testing.T) {
		signal := repo.Signal(created.ID)
		require.NoError(t, signal.SetCombatActive(ctx, true))
		active, err := repo.IsCombatActive(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, active)

		require.NoError(t, signal.SetCombatActive(ctx, false))
		active, err = repo.IsCombatActive(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, active)

		assert.ErrorIs(t, repo.Signal(999999).SetCombatActive(ctx, true), campaign.ErrNotFound)
		_, err = repo.IsCombatActive(ctx, 999999)
		assert.ErrorIs(t, err, campaign.ErrNotFound)
	})
}
