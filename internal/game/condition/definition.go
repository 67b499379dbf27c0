// Package condition holds the catalog of standard condition labels.
//
// The encounter engine accepts any label; the catalog only supplies
// descriptions for the ones a table commonly uses.
package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConditionDef is the static definition of a condition, loaded from YAML.
type ConditionDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Incapacitating marks conditions that stop a combatant from acting.
	Incapacitating bool `yaml:"incapacitating"`
}

// Validate reports whether the definition can be registered.
func (d *ConditionDef) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("condition id must not be empty")
	}
	if d.ID != Normalize(d.ID) {
		return fmt.Errorf("condition id %q must be lowercase without surrounding spaces", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("condition %q: name must not be empty", d.ID)
	}
	return nil
}

// Normalize returns the catalog key for a free-form label.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Registry holds all known ConditionDefs keyed by ID.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error and leaves the registry unchanged if def is invalid.
func (r *Registry) Register(def *ConditionDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the ConditionDef for label, or (nil, false) if not found.
// Lookup is case-insensitive.
func (r *Registry) Get(label string) (*ConditionDef, bool) {
	d, ok := r.defs[Normalize(label)]
	return d, ok
}

// All returns every registered ConditionDef sorted by ID.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *ConditionDef) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Unknown returns the labels that have no catalog entry, in input order.
func (r *Registry) Unknown(labels []string) []string {
	var out []string
	for _, l := range labels {
		if _, ok := r.Get(l); !ok {
			out = append(out, l)
		}
	}
	return out
}

// Describe returns a one-line description of label suitable for display.
// Labels outside the catalog are described as custom.
func (r *Registry) Describe(label string) string {
	d, ok := r.Get(label)
	if !ok {
		return fmt.Sprintf("%s: custom condition", Normalize(label))
	}
	return fmt.Sprintf("%s: %s", d.Name, d.Description)
}

// LoadDirectory reads every *.yaml file in dir, parses each as a ConditionDef,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def ConditionDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
	}
	return reg, nil
}
