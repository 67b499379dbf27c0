package console

import (
	"fmt"
	"slices"
	"strings"
)

// Registry maps command names and aliases to Command definitions. Lookups
// are case-insensitive.
type Registry struct {
	sorted []*Command          // by name
	byWord map[string]*Command // name or alias → command
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a name or alias.
// Postcondition: Returns a Registry or an error naming the first collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command)}
	for i := range cmds {
		cmd := &cmds[i]
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			key := strings.ToLower(word)
			if prev, taken := r.byWord[key]; taken {
				return nil, fmt.Errorf("command word %q used by both %q and %q", word, prev.Name, cmd.Name)
			}
			r.byWord[key] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	slices.SortFunc(r.sorted, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(word)]
	return cmd, ok
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.sorted)
}

// CommandsByCategory groups the commands by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
