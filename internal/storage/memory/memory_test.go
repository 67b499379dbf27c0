package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/storage/memory"
)

func intp(v int) *int { return &v }

func aria(campaignID int64) *character.Character {
	return &character.Character{CampaignID: campaignID, Name: "Aria", Level: 3, MaxHP: 21, CurrentHP: 21, ArmorClass: intp(15)}
}

func TestCharacterStore_CreateAndGet(t *testing.T) {
	s := memory.NewCharacterStore()
	ctx := context.Background()

	created, err := s.Create(ctx, aria(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	*created.ArmorClass = 1
	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, *got.ArmorClass, "returned records must not alias the store")

	_, err = s.Create(ctx, aria(1))
	assert.ErrorIs(t, err, character.ErrNameTaken)
	_, err = s.Create(ctx, aria(2))
	assert.NoError(t, err, "names are unique per campaign")

	_, err = s.GetByID(ctx, 99)
	assert.ErrorIs(t, err, character.ErrNotFound)
}

func TestCharacterStore_RejectsInvalid(t *testing.T) {
	c := aria(1)
	c.CurrentHP = 50
	_, err := memory.NewCharacterStore().Create(context.Background(), c)
	assert.Error(t, err)
}

func TestCharacterStore_ListByCampaign(t *testing.T) {
	s := memory.NewCharacterStore()
	ctx := context.Background()
	for _, name := range []string{"Aria", "Bram", "Ilse"} {
		c := aria(1)
		c.Name = name
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, aria(2))
	require.NoError(t, err)

	party, err := s.ListByCampaign(ctx, 1)
	require.NoError(t, err)
	require.Len(t, party, 3)
	assert.Equal(t, "Aria", party[0].Name)
	assert.Equal(t, "Ilse", party[2].Name)
}

func TestCharacterStore_WriteCurrentHP(t *testing.T) {
	s := memory.NewCharacterStore()
	ctx := context.Background()
	c, err := s.Create(ctx, aria(1))
	require.NoError(t, err)

	require.NoError(t, s.WriteCurrentHP(ctx, c.ID, 4))
	got, _ := s.GetByID(ctx, c.ID)
	assert.Equal(t, 4, got.CurrentHP)

	assert.ErrorIs(t, s.WriteCurrentHP(ctx, 99, 4), character.ErrNotFound)

	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(-100, 100).Draw(rt, "hp")
		if err := s.WriteCurrentHP(ctx, c.ID, hp); err != nil {
			rt.Fatal(err)
		}
		got, _ := s.GetByID(ctx, c.ID)
		if got.CurrentHP < 0 || got.CurrentHP > got.MaxHP {
			rt.Fatalf("stored hp %d outside [0,%d]", got.CurrentHP, got.MaxHP)
		}
	})
}

func TestCampaignStore(t *testing.T) {
	s := memory.NewCampaignStore()
	ctx := context.Background()

	c, err := s.Create(ctx, "Reeds")
	require.NoError(t, err)
	_, err = s.Create(ctx, "Reeds")
	assert.ErrorIs(t, err, campaign.ErrNameTaken)
	_, err = s.Create(ctx, "")
	assert.Error(t, err)

	signal := s.Signal(c.ID)
	require.NoError(t, signal.SetCombatActive(ctx, true))
	active, err := s.IsCombatActive(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, signal.SetCombatActive(ctx, false))
	active, _ = s.IsCombatActive(ctx, c.ID)
	assert.False(t, active)

	byName, err := s.GetByName(ctx, "Reeds")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)
	_, err = s.GetByName(ctx, "Saltmarsh")
	assert.ErrorIs(t, err, campaign.ErrNotFound)

	assert.ErrorIs(t, s.Signal(42).SetCombatActive(ctx, true), campaign.ErrNotFound)
	_, err = s.GetByID(ctx, 42)
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestCampaignStore_Seed(t *testing.T) {
	s := memory.NewCampaignStore()
	ctx := context.Background()

	require.NoError(t, s.Seed(campaign.Campaign{ID: 7, Name: "Saltmarsh"}))
	got, err := s.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Saltmarsh", got.Name)
	require.NoError(t, s.Signal(7).SetCombatActive(ctx, true))

	next, err := s.Create(ctx, "Reeds")
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID)

	assert.Error(t, s.Seed(campaign.Campaign{ID: 0, Name: "Zero"}))
	assert.Error(t, s.Seed(campaign.Campaign{ID: 9}))
}

func TestEncounterLogStore_Recent(t *testing.T) {
	s := memory.NewEncounterLogStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "a", CampaignID: 1, EndedAt: base}))
	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "b", CampaignID: 1, EndedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "c", CampaignID: 1, EndedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "x", CampaignID: 2, EndedAt: base}))
	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "a", CampaignID: 1, EndedAt: base}), "duplicate append is ignored")

	got, err := s.Recent(ctx, 1, 0)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)

	got, err = s.Recent(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEncounterLogStore_FeedsHistory(t *testing.T) {
	s := memory.NewEncounterLogStore()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, combat.LogEntry{ID: "old", CampaignID: 1, EndedAt: time.Unix(0, 0)}))

	h := combat.NewHistory(0, s, zap.NewNop())
	require.NoError(t, h.Load(ctx, 1))
	assert.Equal(t, 1, h.Len())
}
