// Package dice provides the randomness abstraction, dice expressions and the
// logged roller used for initiative and free-form rolls.
package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Expression is a parsed "NdS+M" dice expression.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// MaxDice is the largest die count an expression may roll.
const MaxDice = 100

// Parse parses expressions such as "d20", "1d20+3", "2d6-1". Whitespace and
// case are ignored.
//
// Postcondition: Returns an Expression with 1 <= Count <= MaxDice and Sides >= 2, or an error.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.IndexByte(s, 'd')
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if n < 1 || n > MaxDice {
			return Expression{}, fmt.Errorf("dice: die count in %q must be in [1, %d]", raw, MaxDice)
		}
		count = n
	}

	rest := s[dIdx+1:]
	modStr := ""
	if modIdx := strings.IndexAny(rest, "+-"); modIdx >= 0 {
		rest, modStr = rest[:modIdx], rest[modIdx:]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}
	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}, nil
}

// D20 returns the expression "1d20" with the given modifier.
func D20(modifier int) Expression {
	raw := "1d20"
	if modifier != 0 {
		raw = fmt.Sprintf("1d20%+d", modifier)
	}
	return Expression{Raw: raw, Count: 1, Sides: 20, Modifier: modifier}
}

// RollResult holds the full audit trail for one evaluated expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d20+2 → [14] +2 = 16".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Roll evaluates expr with src.
//
// Precondition: expr came from Parse or D20; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and every die is in [1, expr.Sides].
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}
