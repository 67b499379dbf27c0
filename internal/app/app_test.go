package app_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/app"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	v := config.Defaults()
	v.Set("encounter.seed", 42)
	v.Set("content.conditions_dir", "../../content/conditions")
	v.Set("content.bestiary_dir", "../../content/bestiary")
	v.Set("content.party_file", "../../content/party.yaml")
	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestBuild_MemoryRunsAnEncounter(t *testing.T) {
	cfg := memoryConfig(t)
	out := &bytes.Buffer{}
	in := strings.NewReader("spawn goblin 2\nparty\nroll 2d6+1\nnext\nend\nhistory\nquit\n")

	a, cleanup, err := app.Build(context.Background(), cfg, zap.NewNop(), in, out)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, a.Service.Start(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Added Goblin 1")
	assert.Contains(t, text, "Pulled 3 party member(s)")
	assert.Contains(t, text, "2d6+1 → [")
	assert.Contains(t, text, "Encounter over")
	assert.NotContains(t, text, "error:")
	assert.Equal(t, combat.StateSetup, a.Encounter.State(), "end returns the encounter to setup")
	assert.Len(t, a.Encounter.History(), 1)
}

func TestBuild_MissingPartyFile(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Content.PartyFile = "/nonexistent/party.yaml"
	_, _, err := app.Build(context.Background(), cfg, zap.NewNop(), strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuild_EmptyContentDisablesCatalogs(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Content = config.ContentConfig{}
	out := &bytes.Buffer{}

	a, cleanup, err := app.Build(context.Background(), cfg, zap.NewNop(), strings.NewReader(""), out)
	require.NoError(t, err)
	defer cleanup()

	err = a.Console.Execute(context.Background(), "bestiary")
	assert.ErrorContains(t, err, "no bestiary loaded")
	err = a.Console.Execute(context.Background(), "party")
	assert.NoError(t, err, "an empty party still starts the encounter")
	assert.Equal(t, combat.StateActive, a.Encounter.State())
}

func TestBuild_UnsupportedDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Driver = "sqlite"
	_, _, err := app.Build(context.Background(), cfg, zap.NewNop(), strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
