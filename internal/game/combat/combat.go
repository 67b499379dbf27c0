// Package combat implements the encounter engine: combatants, initiative,
// turn order, the Setup/Active/Ended lifecycle, hit point mutation, the
// encounter history, and reconciliation with the party roster.
package combat

import (
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes player characters from allies and enemies.
// Allies and players share initiative and ordering rules; only players link
// back to the roster.
type Kind int

const (
	KindPlayer Kind = iota
	KindAlly
	KindEnemy
)

// String returns the lowercase kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindAlly:
		return "ally"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its label.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("combat: cannot marshal kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind label produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) valid() bool { return k >= KindPlayer && k <= KindEnemy }

// ParseKind maps a label ("player", "pc", "ally", "enemy", "monster") to a Kind.
//
// Postcondition: Returns a valid Kind or a *ValidationError on field "kind".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "pc":
		return KindPlayer, nil
	case "ally":
		return KindAlly, nil
	case "enemy", "monster", "npc":
		return KindEnemy, nil
	default:
		return 0, invalid("kind", "unknown kind %q", s)
	}
}

// Combatant is one participant tracked within a single encounter.
//
// Invariant: 0 <= CurrentHP <= MaxHP; ArmorClass, when set, is >= 0.
type Combatant struct {
	ID   string
	Name string
	Kind Kind

	CurrentHP int
	MaxHP     int
	// ArmorClass is display-only; nil when the combatant has no AC on record.
	ArmorClass *int

	InitiativeModifier int
	Initiative         int

	// Conditions is a set of free-form status labels, kept sorted and unique.
	Conditions []string

	// CharacterID references a roster character; 0 means not linked.
	CharacterID int64
}

// IsPlayer reports whether this combatant is a player character.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// Linked reports whether this combatant carries a roster back-reference.
func (c *Combatant) Linked() bool { return c.CharacterID != 0 }

// Defeated reports whether this combatant has dropped to zero hit points.
// Defeated combatants keep their place in the turn order.
func (c *Combatant) Defeated() bool { return c.CurrentHP <= 0 }

// HasCondition reports whether label is in the combatant's condition set.
func (c *Combatant) HasCondition(label string) bool {
	_, found := slices.BinarySearch(c.Conditions, strings.ToLower(strings.TrimSpace(label)))
	return found
}

// clone returns a deep copy safe to hand to callers.
func (c *Combatant) clone() Combatant {
	out := *c
	if c.ArmorClass != nil {
		ac := *c.ArmorClass
		out.ArmorClass = &ac
	}
	out.Conditions = slices.Clone(c.Conditions)
	return out
}

// Template describes a combatant before it is admitted to an encounter.
// Optional numeric fields are pointers; nil means "not supplied".
type Template struct {
	Name      string
	Kind      Kind
	CurrentHP int
	// MaxHP defaults to CurrentHP when nil.
	MaxHP              *int
	ArmorClass         *int
	InitiativeModifier int
	// Initiative, when set, is used verbatim instead of rolling.
	Initiative  *int
	Conditions  []string
	CharacterID int64
}

// Validate checks the template against the combatant invariants.
//
// Postcondition: Returns nil or a *ValidationError naming the first offending field.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if !t.Kind.valid() {
		return invalid("kind", "unknown kind %d", int(t.Kind))
	}
	if t.CurrentHP < 0 {
		return invalid("current_hp", "must be >= 0, got %d", t.CurrentHP)
	}
	if t.MaxHP != nil {
		if *t.MaxHP < 1 {
			return invalid("max_hp", "must be >= 1, got %d", *t.MaxHP)
		}
		if *t.MaxHP < t.CurrentHP {
			return invalid("max_hp", "must be >= current_hp (%d), got %d", t.CurrentHP, *t.MaxHP)
		}
	}
	if t.ArmorClass != nil && *t.ArmorClass < 0 {
		return invalid("armor_class", "must be >= 0, got %d", *t.ArmorClass)
	}
	if t.CharacterID < 0 {
		return invalid("character_id", "must be positive, got %d", t.CharacterID)
	}
	if t.CharacterID != 0 && t.Kind != KindPlayer {
		return invalid("character_id", "only player characters may link to the roster")
	}
	return nil
}

// NewCombatant validates t and builds a Combatant with the given id and initiative.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a combatant satisfying all invariants, or a *ValidationError
// and no combatant.
func NewCombatant(id string, t Template, initiative int) (*Combatant, error) {
	if id == "" {
		return nil, invalid("id", "must not be empty")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	maxHP := t.CurrentHP
	if t.MaxHP != nil {
		maxHP = *t.MaxHP
	}
	var ac *int
	if t.ArmorClass != nil {
		v := *t.ArmorClass
		ac = &v
	}
	return &Combatant{
		ID:                 id,
		Name:               strings.TrimSpace(t.Name),
		Kind:               t.Kind,
		CurrentHP:          t.CurrentHP,
		MaxHP:              maxHP,
		ArmorClass:         ac,
		InitiativeModifier: t.InitiativeModifier,
		Initiative:         initiative,
		Conditions:         normalizeConditions(t.Conditions),
		CharacterID:        t.CharacterID,
	}, nil
}

// normalizeConditions lowercases, trims, de-duplicates and sorts labels.
func normalizeConditions(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
