package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func intp(v int) *int { return &v }

func setupCampaign(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	c, err := postgres.NewCampaignRepository(pool).Create(context.Background(), uniqueName("campaign"))
	require.NoError(t, err)
	return c.ID
}

func setupCharRepos(t *testing.T) (*postgres.CharacterRepository, int64) {
	t.Helper()
	pool := testutil.NewPool(t)
	return postgres.NewCharacterRepository(pool), setupCampaign(t, pool)
}

func makeTestCharacter(campaignID int64, name string) *character.Character {
	return &character.Character{
		CampaignID:         campaignID,
		Name:               name,
		Class:              "rogue",
		Level:              3,
		Player:             "Sam",
		MaxHP:              21,
		CurrentHP:          21,
		ArmorClass:         intp(15),
		InitiativeModifier: 4,
	}
}

func TestCharacterRepository_Create(t *testing.T) {
	repo, campaignID := setupCharRepos(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter(campaignID, "Aria"))
	require.NoError(t, err)

	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, campaignID, created.CampaignID)
	assert.Equal(t, "Aria", created.Name)
	assert.Equal(t, "rogue", created.Class)
	assert.Equal(t, 3, created.Level)
	require.NotNil(t, created.ArmorClass)
	assert.Equal(t, 15, *created.ArmorClass)
	assert.Equal(t, 4, created.InitiativeModifier)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.Create(ctx, makeTestCharacter(campaignID, "Aria"))
		assert.ErrorIs(t, err, character.ErrNameTaken)
	})

	t.Run("nil armor class round-trips", func(t *testing.T) {
		c := makeTestCharacter(campaignID, "Bram")
		c.ArmorClass = nil
		created, err := repo.Create(ctx, c)
		require.NoError(t, err)
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ArmorClass)
	})

	t.Run("invalid character rejected before insert", func(t *testing.T) {
		c := makeTestCharacter(campaignID, "Ghost")
		c.MaxHP = 0
		_, err := repo.Create(ctx, c)
		assert.Error(t, err)
	})
}

func TestCharacterRepository_ListByCampaign(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)
	ctx := context.Background()
	mine, other := setupCampaign(t, pool), setupCampaign(t, pool)

	for _, name := range []string{"Aria", "Bram"} {
		_, err := repo.Create(ctx, makeTestCharacter(mine, name))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, makeTestCharacter(other, "Stranger"))
	require.NoError(t, err)

	party, err := repo.ListByCampaign(ctx, mine)
	require.NoError(t, err)
	require.Len(t, party, 2)
	assert.Equal(t, "Aria", party[0].Name)
	assert.Equal(t, "Bram", party[1].Name)

	empty, err := repo.ListByCampaign(ctx, 999999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCharacterRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupCharRepos(t)
	_, err := repo.GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, character.ErrNotFound)
}

func TestCharacterRepository_WriteCurrentHP(t *testing.T) {
	repo, campaignID := setupCharRepos(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, makeTestCharacter(campaignID, "Aria"))
	require.NoError(t, err)

	require.NoError(t, repo.WriteCurrentHP(ctx, created.ID, 6))
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.CurrentHP)
	assert.True(t, !got.UpdatedAt.Before(created.UpdatedAt))

	// Writing the same value again is idempotent.
	require.NoError(t, repo.WriteCurrentHP(ctx, created.ID, 6))

	assert.ErrorIs(t, repo.WriteCurrentHP(ctx, 999999, 3), character.ErrNotFound)

	t.Run("clamped to max", func(t *testing.T) {
		require.NoError(t, repo.WriteCurrentHP(ctx, created.ID, 500))
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, got.MaxHP, got.CurrentHP)
	})

	t.Run("property: stored hp stays within bounds", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			hp := rapid.IntRange(-50, 100).Draw(rt, "hp")
			if err := repo.WriteCurrentHP(ctx, created.ID, hp); err != nil {
				rt.Fatalf("write: %v", err)
			}
			got, err := repo.GetByID(ctx, created.ID)
			if err != nil {
				rt.Fatalf("get: %v", err)
			}
			want := min(max(hp, 0), got.MaxHP)
			if got.CurrentHP != want {
				rt.Fatalf("wrote %d, stored %d, want %d", hp, got.CurrentHP, want)
			}
		})
	})
}
