// Package bestiary loads reusable monster templates from YAML.
package bestiary

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Monster is a reusable stat block loaded from YAML.
type Monster struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Kind is "enemy" (the default) or "ally".
	Kind               string   `yaml:"kind"`
	HP                 int      `yaml:"hp"`
	MaxHP              int      `yaml:"max_hp"`
	AC                 *int     `yaml:"ac"`
	InitiativeModifier int      `yaml:"initiative_modifier"`
	Conditions         []string `yaml:"conditions"`
}

// Validate checks that the monster satisfies basic invariants.
//
// Precondition: m must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, HP >= 1, MaxHP is 0
// or >= HP, AC is nil or >= 0, and Kind is empty, "enemy", or "ally".
func (m *Monster) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("monster: id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("monster %q: name must not be empty", m.ID)
	}
	if m.HP < 1 {
		return fmt.Errorf("monster %q: hp must be >= 1", m.ID)
	}
	if m.MaxHP != 0 && m.MaxHP < m.HP {
		return fmt.Errorf("monster %q: max_hp must be >= hp", m.ID)
	}
	if m.AC != nil && *m.AC < 0 {
		return fmt.Errorf("monster %q: ac must be >= 0", m.ID)
	}
	if _, err := m.kind(); err != nil {
		return fmt.Errorf("monster %q: %w", m.ID, err)
	}
	return nil
}

func (m *Monster) kind() (combat.Kind, error) {
	switch strings.ToLower(m.Kind) {
	case "", "enemy":
		return combat.KindEnemy, nil
	case "ally":
		return combat.KindAlly, nil
	default:
		return 0, fmt.Errorf("kind must be enemy or ally, got %q", m.Kind)
	}
}

// ToTemplate converts the monster into a combatant template.
// name overrides the monster's display name when non-empty.
//
// Precondition: m must have passed Validate.
func (m *Monster) ToTemplate(name string) combat.Template {
	if name == "" {
		name = m.Name
	}
	kind, _ := m.kind()
	t := combat.Template{
		Name:               name,
		Kind:               kind,
		CurrentHP:          m.HP,
		InitiativeModifier: m.InitiativeModifier,
		Conditions:         slices.Clone(m.Conditions),
	}
	if m.MaxHP != 0 {
		maxHP := m.MaxHP
		t.MaxHP = &maxHP
	}
	if m.AC != nil {
		ac := *m.AC
		t.ArmorClass = &ac
	}
	return t
}

// LoadMonsterFromBytes parses a single monster from raw YAML bytes.
//
// Postcondition: Returns a validated *Monster, or an error.
func LoadMonsterFromBytes(data []byte) (*Monster, error) {
	var m Monster
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing monster YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Bestiary is an immutable lookup of monsters by ID.
type Bestiary struct {
	byID map[string]*Monster
}

// New builds a Bestiary, rejecting duplicate IDs.
func New(monsters []*Monster) (*Bestiary, error) {
	b := &Bestiary{byID: make(map[string]*Monster, len(monsters))}
	for _, m := range monsters {
		id := strings.ToLower(m.ID)
		if _, dup := b.byID[id]; dup {
			return nil, fmt.Errorf("duplicate monster id %q", m.ID)
		}
		b.byID[id] = m
	}
	return b, nil
}

// Get returns the monster with the given ID, case-insensitively.
func (b *Bestiary) Get(id string) (*Monster, bool) {
	m, ok := b.byID[strings.ToLower(strings.TrimSpace(id))]
	return m, ok
}

// IDs returns every monster ID in sorted order.
func (b *Bestiary) IDs() []string {
	ids := make([]string, 0, len(b.byID))
	for id := range b.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LoadDirectory reads all *.yaml files in dir into a Bestiary.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Bestiary or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadDirectory(dir string) (*Bestiary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bestiary dir %q: %w", dir, err)
	}

	var monsters []*Monster
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		m, err := LoadMonsterFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		monsters = append(monsters, m)
	}
	return New(monsters)
}
