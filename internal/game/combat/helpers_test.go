package combat_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// scriptedRoller returns rolls in order, cycling, and counts calls.
type scriptedRoller struct {
	rolls []int
	calls int
}

func (r *scriptedRoller) RollD20() int {
	v := r.rolls[r.calls%len(r.rolls)]
	r.calls++
	return v
}

type fakeRoster struct {
	mu     sync.Mutex
	writes map[int64]int
	failOn int64
}

func newFakeRoster() *fakeRoster { return &fakeRoster{writes: make(map[int64]int)} }

func (f *fakeRoster) WriteCurrentHP(_ context.Context, id int64, hp int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failOn {
		return errors.New("roster unavailable")
	}
	f.writes[id] = hp
	return nil
}

type fakeSignal struct {
	mu     sync.Mutex
	active bool
	calls  []bool
	err    error
}

func (f *fakeSignal) SetCombatActive(_ context.Context, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.active = active
	f.calls = append(f.calls, active)
	return nil
}

type harness struct {
	enc    *combat.Encounter
	roller *scriptedRoller
	roster *fakeRoster
	signal *fakeSignal
	hist   *combat.History
}

var fixedNow = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func newHarness(t *testing.T, rolls ...int) *harness {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []int{10}
	}
	seq := 0
	h := &harness{
		roller: &scriptedRoller{rolls: rolls},
		roster: newFakeRoster(),
		signal: &fakeSignal{},
		hist:   combat.NewHistory(0, nil, zap.NewNop()),
	}
	h.enc = combat.NewEncounter(h.roller, h.roster, h.signal, h.hist, zap.NewNop(),
		combat.WithIDFunc(func() string {
			seq++
			return fmt.Sprintf("c%d", seq)
		}),
		combat.WithClock(func() time.Time { return fixedNow }),
	)
	return h
}

func intp(v int) *int { return &v }

func enemy(name string, hp, initiative int) combat.Template {
	return combat.Template{Name: name, Kind: combat.KindEnemy, CurrentHP: hp, Initiative: intp(initiative)}
}

func mustAdd(t *testing.T, enc *combat.Encounter, tmpl combat.Template) combat.Combatant {
	t.Helper()
	c, err := enc.AddCombatant(tmpl)
	if err != nil {
		t.Fatalf("AddCombatant(%q): %v", tmpl.Name, err)
	}
	return c
}

func names(cs []combat.Combatant) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func nopLogger() *zap.Logger { return zap.NewNop() }
