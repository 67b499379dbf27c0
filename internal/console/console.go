package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/bestiary"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

// PartySource lists the roster characters of a campaign.
type PartySource interface {
	ListByCampaign(ctx context.Context, campaignID int64) ([]*character.Character, error)
}

// DiceRoller evaluates free-form dice expressions.
type DiceRoller interface {
	RollExpr(expr string) (dice.RollResult, error)
}

// Option customises a Console.
type Option func(*Console)

// WithBestiary enables the spawn and bestiary commands.
func WithBestiary(b *bestiary.Bestiary) Option { return func(c *Console) { c.bestiary = b } }

// WithConditions enables condition descriptions and the conditions command.
func WithConditions(reg *condition.Registry) Option { return func(c *Console) { c.conditions = reg } }

// WithDice enables the roll command.
func WithDice(r DiceRoller) Option { return func(c *Console) { c.dice = r } }

// WithRollMode sets the roll mode used by batch adds that do not name one.
func WithRollMode(m combat.RollMode) Option { return func(c *Console) { c.defaultMode = m } }

type handlerFunc func(c *Console, ctx context.Context, args []string) error

// Console executes command lines against one encounter.
type Console struct {
	enc         *combat.Encounter
	party       PartySource
	campaignID  int64
	bestiary    *bestiary.Bestiary
	conditions  *condition.Registry
	dice        DiceRoller
	defaultMode combat.RollMode
	registry    *Registry
	handlers    map[string]handlerFunc
	view        *view
	logger      *zap.Logger
}

// New creates a Console writing to out.
//
// Precondition: enc, party, out and logger must be non-nil.
func New(enc *combat.Encounter, party PartySource, campaignID int64, out io.Writer, logger *zap.Logger, opts ...Option) *Console {
	c := &Console{
		enc:         enc,
		party:       party,
		campaignID:  campaignID,
		defaultMode: combat.RollGroup,
		registry:    DefaultRegistry(),
		view:        newView(out),
		logger:      logger,
	}
	c.handlers = map[string]handlerFunc{
		HandlerAdd:        (*Console).add,
		HandlerSpawn:      (*Console).spawn,
		HandlerRemove:     (*Console).remove,
		HandlerInit:       (*Console).initiative,
		HandlerParty:      (*Console).pullParty,
		HandlerStart:      (*Console).start,
		HandlerNext:       (*Console).next,
		HandlerDamage:     (*Console).damage,
		HandlerHeal:       (*Console).heal,
		HandlerCondition:  (*Console).setConditions,
		HandlerEnd:        (*Console).end,
		HandlerOrder:      (*Console).order,
		HandlerHistory:    (*Console).history,
		HandlerConditions: (*Console).listConditions,
		HandlerBestiary:   (*Console).listBestiary,
		HandlerRoll:       (*Console).roll,
		HandlerHelp:       (*Console).help,
		HandlerQuit:       (*Console).quit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute parses and runs one command line.
//
// Postcondition: Returns nil on success, ErrQuit for the quit command, or the
// error that prevented the command from running. A failed command leaves the
// encounter unchanged.
func (c *Console) Execute(ctx context.Context, line string) error {
	parsed := Parse(line)
	if parsed.Command == "" {
		return nil
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		return fmt.Errorf("unknown command %q (type help for a list)", parsed.Command)
	}
	h, ok := c.handlers[cmd.Handler]
	if !ok {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	c.logger.Debug("executing command",
		zap.String("command", cmd.Name),
		zap.Strings("args", parsed.Args),
	)
	return h(c, ctx, parsed.Args)
}

// ReportError writes err to the output in the console's error style.
func (c *Console) ReportError(err error) {
	c.view.errorf("%v", err)
}

// Prompt writes the input prompt reflecting the encounter state.
func (c *Console) Prompt() {
	c.view.prompt(c.promptText())
}

func (c *Console) promptText() string {
	if c.enc.State() != combat.StateActive {
		return "setup> "
	}
	cur, err := c.enc.Current()
	if err != nil {
		return fmt.Sprintf("round %d> ", c.enc.Round())
	}
	return fmt.Sprintf("round %d · %s> ", c.enc.Round(), cur.Name)
}

// roster returns the combatants in display order: the turn order followed by
// anyone waiting to join at the next round.
func (c *Console) roster() (list []combat.Combatant, pending map[string]bool, current string) {
	snap := c.enc.Snapshot()
	byID := make(map[string]combat.Combatant, len(snap.Combatants))
	for _, cb := range snap.Combatants {
		byID[cb.ID] = cb
	}
	pending = make(map[string]bool, len(snap.Pending))
	for _, id := range snap.Order {
		list = append(list, byID[id])
	}
	for _, id := range snap.Pending {
		list = append(list, byID[id])
		pending[id] = true
	}
	if snap.State == combat.StateActive && snap.TurnIndex < len(snap.Order) {
		current = snap.Order[snap.TurnIndex]
	}
	return list, pending, current
}

// resolveTarget finds a combatant by list position (1-based), exact name,
// unique name prefix, or id.
func (c *Console) resolveTarget(ref string) (combat.Combatant, error) {
	list, _, _ := c.roster()
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(list) {
			return list[n-1], nil
		}
		return combat.Combatant{}, &combat.NotFoundError{ID: ref}
	}
	for _, cb := range list {
		if strings.EqualFold(cb.Name, ref) {
			return cb, nil
		}
	}
	var matches []combat.Combatant
	lower := strings.ToLower(ref)
	for _, cb := range list {
		if strings.HasPrefix(strings.ToLower(cb.Name), lower) {
			matches = append(matches, cb)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return combat.Combatant{}, &combat.ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("%q matches %s", ref, strings.Join(names, ", ")),
		}
	}
	for _, cb := range list {
		if cb.ID == ref {
			return cb, nil
		}
	}
	return combat.Combatant{}, &combat.NotFoundError{ID: ref}
}

func usage(cmd string) error {
	for _, b := range BuiltinCommands() {
		if b.Name == cmd {
			return fmt.Errorf("usage: %s", b.Usage)
		}
	}
	return fmt.Errorf("usage: %s", cmd)
}
