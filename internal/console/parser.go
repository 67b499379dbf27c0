package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command. A double-quoted run
	// of words is a single argument with the quotes removed.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[spaceIdx+1:])
	return ParseResult{
		Command: strings.ToLower(line[:spaceIdx]),
		Args:    splitArgs(rest),
		RawArgs: rest,
	}
}

// splitArgs splits on whitespace, keeping double-quoted runs together.
// An unterminated quote extends to the end of the input.
func splitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			args = append(args, cur.String())
		}
		cur.Reset()
		started = false
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return args
}

// options separates key=value arguments from positional ones.
type options struct {
	positional []string
	named      map[string]string
}

func splitOptions(args []string) (options, error) {
	opts := options{named: make(map[string]string)}
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			opts.positional = append(opts.positional, a)
			continue
		}
		key = strings.ToLower(key)
		if _, dup := opts.named[key]; dup {
			return options{}, &combat.ValidationError{Field: key, Reason: "given more than once"}
		}
		opts.named[key] = value
	}
	return opts, nil
}

// intOpt returns the named integer option, or nil when absent.
func (o options) intOpt(key string) (*int, error) {
	raw, ok := o.named[key]
	if !ok {
		return nil, nil
	}
	v, err := parseInt(key, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// unknown returns the first named option not in allowed.
func (o options) unknown(allowed ...string) error {
	for key := range o.named {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return &combat.ValidationError{Field: key, Reason: "unknown option"}
		}
	}
	return nil
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &combat.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a whole number", s)}
	}
	return v, nil
}

// ParseQuantity parses a batch size typed by the user.
//
// Postcondition: Returns a value in [1, combat.MaxBatchQuantity], or a
// *combat.ValidationError on field "quantity".
func ParseQuantity(s string) (int, error) {
	q, err := parseInt("quantity", s)
	if err != nil {
		return 0, err
	}
	if q < 1 {
		return 0, &combat.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be >= 1, got %d", q)}
	}
	if q > combat.MaxBatchQuantity {
		return 0, &combat.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be <= %d, got %d", combat.MaxBatchQuantity, q)}
	}
	return q, nil
}

// ParseAmount parses a damage or healing amount typed by the user.
//
// Postcondition: Returns the integer value, or a *combat.ValidationError on
// field "amount". Range checks are left to the engine.
func ParseAmount(s string) (int, error) {
	return parseInt("amount", s)
}
