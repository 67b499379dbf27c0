package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()
	cases := map[string]string{
		"add": HandlerAdd, "a": HandlerAdd,
		"dmg": HandlerDamage, "damage": HandlerDamage, "hit": HandlerDamage,
		"next": HandlerNext, "n": HandlerNext,
		"party": HandlerParty, "pull": HandlerParty,
		"?": HandlerHelp, "q": HandlerQuit,
	}
	for input, handler := range cases {
		cmd, ok := r.Resolve(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, handler, cmd.Handler, "input %q", input)
	}
}

func TestResolve_IgnoresCase(t *testing.T) {
	cmd, ok := DefaultRegistry().Resolve("DMG")
	require.True(t, ok)
	assert.Equal(t, "dmg", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)
}

func TestNewRegistry_AliasCollision(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "next", Aliases: []string{"n"}},
		{Name: "nudge", Aliases: []string{"n"}},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{
		{Name: "next", Aliases: []string{"n"}},
		{Name: "n"},
	})
	assert.Error(t, err)
}

func TestCommands_Sorted(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestCommandsByCategory_CoversEveryCommand(t *testing.T) {
	r := DefaultRegistry()
	total := 0
	for _, cat := range []string{CategorySetup, CategoryCombat, CategoryInfo, CategorySystem} {
		total += len(r.CommandsByCategory()[cat])
	}
	assert.Equal(t, len(r.Commands()), total)
}

func TestBuiltinCommands_HaveUsageAndHelp(t *testing.T) {
	for _, cmd := range BuiltinCommands() {
		assert.NotEmpty(t, cmd.Usage, cmd.Name)
		assert.NotEmpty(t, cmd.Help, cmd.Name)
		assert.NotEmpty(t, cmd.Handler, cmd.Name)
	}
}

func TestPropertyResolve_EveryAliasResolvesToItsCommand(t *testing.T) {
	r := DefaultRegistry()
	builtins := BuiltinCommands()
	rapid.Check(t, func(t *rapid.T) {
		cmd := rapid.SampledFrom(builtins).Draw(t, "cmd")
		for _, alias := range cmd.Aliases {
			got, ok := r.Resolve(alias)
			if !ok || got.Name != cmd.Name {
				t.Fatalf("alias %q did not resolve to %q", alias, cmd.Name)
			}
		}
	})
}
