package combat

import (
	"fmt"
	"strings"
)

// Roller produces the d20 rolls used for initiative.
// dice.Roller satisfies it; tests substitute deterministic rollers.
type Roller interface {
	// RollD20 returns a uniformly distributed integer in [1, 20].
	RollD20() int
}

// RollInitiative rolls a d20 and adds modifier.
//
// Precondition: r must be non-nil.
// Postcondition: Returns a value in [1+modifier, 20+modifier].
func RollInitiative(r Roller, modifier int) int {
	return r.RollD20() + modifier
}

// MaxBatchQuantity is the largest number of combatants a single batch may add.
const MaxBatchQuantity = 100

// RollMode selects how a batch of identical combatants rolls initiative.
type RollMode int

const (
	// RollIndividual rolls once per batch member.
	RollIndividual RollMode = iota
	// RollGroup rolls once and shares the result with every member.
	RollGroup
)

// String returns the mode label.
func (m RollMode) String() string {
	switch m {
	case RollIndividual:
		return "individual"
	case RollGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseRollMode maps "individual"/"each" or "group" to a RollMode.
//
// Postcondition: Returns a valid RollMode or a *ValidationError on field "roll_mode".
func ParseRollMode(s string) (RollMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual", "each", "indiv":
		return RollIndividual, nil
	case "group", "grp":
		return RollGroup, nil
	default:
		return 0, invalid("roll_mode", "must be individual or group, got %q", s)
	}
}

// BuildBatch creates quantity combatants from t.
// Members are named "<name> 1" .. "<name> N" when quantity > 1. In RollGroup mode
// exactly one initiative roll is made; in RollIndividual mode each member rolls.
// A manual t.Initiative suppresses rolling entirely.
//
// Precondition: newID and r must be non-nil.
// Postcondition: Returns quantity combatants, or a *ValidationError and none.
// quantity must lie in [1, MaxBatchQuantity].
func BuildBatch(newID func() string, t Template, quantity int, mode RollMode, r Roller) ([]*Combatant, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be >= 1, got %d", quantity)
	}
	if quantity > MaxBatchQuantity {
		return nil, invalid("quantity", "must be <= %d, got %d", MaxBatchQuantity, quantity)
	}
	if mode != RollIndividual && mode != RollGroup {
		return nil, invalid("roll_mode", "unknown mode %d", int(mode))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if quantity > 1 && t.CharacterID != 0 {
		return nil, invalid("quantity", "a roster character can only be added once")
	}

	initiative := func() int { return RollInitiative(r, t.InitiativeModifier) }
	if t.Initiative != nil {
		fixed := *t.Initiative
		initiative = func() int { return fixed }
	} else if mode == RollGroup {
		shared := initiative()
		initiative = func() int { return shared }
	}

	out := make([]*Combatant, 0, quantity)
	for i := 1; i <= quantity; i++ {
		member := t
		if quantity > 1 {
			member.Name = fmt.Sprintf("%s %d", strings.TrimSpace(t.Name), i)
		}
		c, err := NewCombatant(newID(), member, initiative())
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
