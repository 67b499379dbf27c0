package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in       string
		count    int
		sides    int
		modifier int
	}{
		{"d20", 1, 20, 0},
		{"1d20+3", 1, 20, 3},
		{"2d6-1", 2, 6, -1},
		{"1D20 + 4", 1, 20, 4},
	}
	for _, tc := range cases {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.modifier, e.Modifier, tc.in)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "20", "d1", "0d6", "2d", "xd6", "1d20+", "1d20+-3", "101d6", "9223372036854775807d6", "1d6x"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected %q to be rejected", in)
	}
}

func TestParse_KeepsRawText(t *testing.T) {
	e, err := dice.Parse("  2D6 + 1 ")
	require.NoError(t, err)
	assert.Equal(t, "2D6 + 1", e.Raw)
}

func TestD20_Expression(t *testing.T) {
	assert.Equal(t, "1d20", dice.D20(0).Raw)
	assert.Equal(t, "1d20+3", dice.D20(3).Raw)
	assert.Equal(t, "1d20-2", dice.D20(-2).Raw)
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "1d20+2", Dice: []int{14}, Modifier: 2}
	assert.Equal(t, "1d20+2 → [14] +2 = 16", r.String())
}

func TestRoll_UsesSource(t *testing.T) {
	e, err := dice.Parse("3d6+1")
	require.NoError(t, err)
	r := dice.Roll(e, fixedSrc{val: 3})
	assert.Equal(t, []int{4, 4, 4}, r.Dice)
	assert.Equal(t, 13, r.Total())
}

func TestRoller_RollD20_InRange(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	for i := 0; i < 500; i++ {
		v := roller.RollD20()
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}

func TestRoller_RollExpr_ParseError(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSrc{val: 0}, zap.NewNop())
	_, err := roller.RollExpr("bogus")
	assert.Error(t, err)
}

func TestRoller_RollExpr(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSrc{val: 4}, zap.NewNop())
	r, err := roller.RollExpr("2d8-3")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5}, r.Dice)
	assert.Equal(t, 7, r.Total())
}

func TestProperty_ParseRoundTripsCanonicalForm(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, dice.MaxDice).Draw(rt, "count")
		sides := rapid.IntRange(2, 1000).Draw(rt, "sides")
		mod := rapid.IntRange(-50, 50).Draw(rt, "mod")
		in := fmt.Sprintf("%dd%d%+d", count, sides, mod)
		e, err := dice.Parse(in)
		if err != nil {
			rt.Fatalf("Parse(%q): %v", in, err)
		}
		if e.Count != count || e.Sides != sides || e.Modifier != mod {
			rt.Fatalf("Parse(%q) = %+v", in, e)
		}
	})
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestCryptoSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestProperty_RollTotalWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		mod := rapid.IntRange(-20, 20).Draw(rt, "mod")
		seed := rapid.Uint64().Draw(rt, "seed")

		expr := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		r := dice.Roll(expr, dice.NewSeededSource(seed))
		if r.Total() < count+mod || r.Total() > count*sides+mod {
			rt.Fatalf("total %d outside [%d, %d]", r.Total(), count+mod, count*sides+mod)
		}
	})
}
