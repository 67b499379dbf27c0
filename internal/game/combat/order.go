package combat

import (
	"cmp"
	"slices"
)

// ComputeOrder returns combatants sorted by initiative, highest first.
// The sort is stable: equal initiatives keep their input (insertion) order and
// no re-roll or secondary tie-break is applied.
//
// Postcondition: The input slice is not modified.
func ComputeOrder(combatants []*Combatant) []*Combatant {
	sorted := slices.Clone(combatants)
	slices.SortStableFunc(sorted, func(a, b *Combatant) int {
		return cmp.Compare(b.Initiative, a.Initiative)
	})
	return sorted
}

// mergeOrder folds late arrivals into a frozen order without moving any
// existing entry relative to the others. Each arrival lands after the last
// entry whose initiative is >= its own; arrivals are placed in their own
// stable initiative order.
func mergeOrder(order, arrivals []*Combatant) []*Combatant {
	out := slices.Clone(order)
	for _, a := range ComputeOrder(arrivals) {
		pos := 0
		for i, c := range out {
			if c.Initiative >= a.Initiative {
				pos = i + 1
			}
		}
		out = slices.Insert(out, pos, a)
	}
	return out
}
