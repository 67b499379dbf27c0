package combat

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// State is the encounter lifecycle state.
type State int

const (
	StateSetup State = iota
	StateActive
	// StateEnded is transient: End records the encounter and returns to StateSetup.
	StateEnded
)

// String returns the lowercase state label.
func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// TurnResult describes the encounter position after NextTurn.
type TurnResult struct {
	Round     int
	TurnIndex int
	Current   Combatant
	// RoundChanged is true only when the turn pointer wrapped into a new round.
	RoundChanged bool
}

// Snapshot is a point-in-time copy of the encounter, suitable for display or
// serialisation.
type Snapshot struct {
	State      State
	Round      int
	TurnIndex  int
	Combatants []Combatant // insertion order
	Order      []string    // combatant ids in turn order
	Pending    []string    // ids added mid-round, merged at the next round
}

// Option customises an Encounter.
type Option func(*Encounter)

// WithIDFunc overrides combatant and log entry id generation.
func WithIDFunc(fn func() string) Option { return func(e *Encounter) { e.newID = fn } }

// WithClock overrides the clock used to timestamp log entries.
func WithClock(now func() time.Time) Option { return func(e *Encounter) { e.now = now } }

// WithTracer sets the tracer used for lifecycle spans.
func WithTracer(t trace.Tracer) Option { return func(e *Encounter) { e.tracer = t } }

// WithCampaign binds the encounter to a campaign: party members of other
// campaigns are ignored and log entries carry the campaign id.
func WithCampaign(id int64) Option { return func(e *Encounter) { e.campaignID = id } }

// Encounter owns the single live combat of the application: its combatants,
// round and turn counters, and lifecycle state.
// All methods are safe for concurrent use; operations are serialised.
type Encounter struct {
	mu sync.Mutex

	roller  Roller
	roster  Roster
	signal  CombatSignal
	history *History
	logger  *zap.Logger
	tracer  trace.Tracer
	newID   func() string
	now     func() time.Time

	campaignID int64

	state      State
	round      int
	turnIndex  int
	combatants map[string]*Combatant
	insertion  []string
	order      []*Combatant
	pending    []*Combatant
}

// NewEncounter creates an encounter in StateSetup.
//
// Precondition: roller, roster, signal, history and logger must be non-nil.
// Postcondition: Returns an empty encounter with Round() == 0.
func NewEncounter(roller Roller, roster Roster, signal CombatSignal, history *History, logger *zap.Logger, opts ...Option) *Encounter {
	e := &Encounter{
		roller:     roller,
		roster:     roster,
		signal:     signal,
		history:    history,
		logger:     logger,
		tracer:     noop.NewTracerProvider().Tracer("skirmish/combat"),
		newID:      uuid.NewString,
		now:        time.Now,
		state:      StateSetup,
		combatants: make(map[string]*Combatant),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddCombatant admits a single combatant, rolling initiative unless t.Initiative is set.
// In Setup the turn order is recomputed; while Active the newcomer waits for the
// next round boundary.
//
// Postcondition: Returns the added combatant, or an error and no change.
func (e *Encounter) AddCombatant(t Template) (Combatant, error) {
	added, err := e.AddBatch(t, 1, RollIndividual)
	if err != nil {
		return Combatant{}, err
	}
	return added[0], nil
}

// AddBatch admits quantity copies of t, rolling initiative per mode.
//
// Postcondition: Either all quantity combatants are added or none are.
func (e *Encounter) AddBatch(t Template, quantity int, mode RollMode) ([]Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.CharacterID != 0 && e.findByRefLocked(t.CharacterID) != nil {
		return nil, invalid("character_id", "character %d is already in the encounter", t.CharacterID)
	}
	batch, err := BuildBatch(e.newID, t, quantity, mode, e.roller)
	if err != nil {
		return nil, err
	}

	out := make([]Combatant, 0, len(batch))
	for _, c := range batch {
		e.insertLocked(c)
		out = append(out, c.clone())
	}
	e.reorderLocked()

	e.logger.Info("combatants added",
		zap.String("name", t.Name),
		zap.Int("quantity", quantity),
		zap.Stringer("roll_mode", mode),
		zap.Stringer("state", e.state),
	)
	return out, nil
}

// RemoveCombatant drops id from the encounter. While Active, removing an entry
// ahead of the turn pointer keeps the current combatant current; removing the
// current combatant hands the turn to the next one.
//
// Postcondition: Returns *NotFoundError when id is unknown.
func (e *Encounter) RemoveCombatant(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.combatants[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	delete(e.combatants, id)
	e.insertion = slices.DeleteFunc(e.insertion, func(s string) bool { return s == id })

	switch e.state {
	case StateActive:
		e.pending = slices.DeleteFunc(e.pending, func(p *Combatant) bool { return p.ID == id })
		if i := slices.Index(e.order, c); i >= 0 {
			e.order = slices.Delete(e.order, i, i+1)
			switch {
			case i < e.turnIndex:
				e.turnIndex--
			case i == e.turnIndex && e.turnIndex >= len(e.order) && len(e.order) > 0:
				e.beginRoundLocked()
			case len(e.order) == 0:
				e.turnIndex = 0
			}
		}
	default:
		e.reorderLocked()
	}

	e.logger.Info("combatant removed",
		zap.String("combatant_id", id),
		zap.String("name", c.Name),
		zap.Stringer("state", e.state),
	)
	return nil
}

// SetInitiative overrides a combatant's initiative. In Setup the order is
// recomputed; while Active the frozen order is left untouched.
func (e *Encounter) SetInitiative(id string, initiative int) (Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.combatants[id]
	if !ok {
		return Combatant{}, &NotFoundError{ID: id}
	}
	c.Initiative = initiative
	e.reorderLocked()
	return c.clone(), nil
}

// Start moves the encounter from Setup to Active.
//
// Precondition: at least one combatant.
// Postcondition: Round() == 1, TurnIndex() == 0, turn order frozen and the combat
// signal raised; on error nothing changes.
func (e *Encounter) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSetup {
		return &InvalidStateError{Op: "start", State: e.state}
	}
	if len(e.combatants) == 0 {
		return &InvalidStateError{Op: "start", State: e.state, Reason: "no combatants"}
	}
	if err := e.raiseSignalLocked(ctx); err != nil {
		return err
	}
	e.activateLocked(ctx)
	return nil
}

// SyncPartyAndStart pulls party into the encounter and starts it. Members
// already present (matched by character id) are refreshed in place; all members
// roll fresh initiative. Unlike Start there is no minimum combatant count.
//
// Postcondition: On error the encounter is unchanged.
func (e *Encounter) SyncPartyAndStart(ctx context.Context, party []character.Character) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := e.tracer.Start(ctx, "combat.sync_party")
	defer span.End()

	if e.state != StateSetup {
		return &InvalidStateError{Op: "sync party", State: e.state}
	}
	members, err := e.pullPartyLocked(party)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("party.size", len(members)))

	if err := e.raiseSignalLocked(ctx); err != nil {
		return err
	}
	e.commitPartyLocked(members)
	e.activateLocked(ctx)
	return nil
}

// NextTurn advances the turn pointer, wrapping into a new round after the last
// combatant. Combatants added during the previous round join the order on wrap.
//
// Postcondition: Returns *InvalidStateError outside StateActive or when nobody is
// left to act.
func (e *Encounter) NextTurn() (TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return TurnResult{}, &InvalidStateError{Op: "advance turn", State: e.state}
	}
	if len(e.order) == 0 && len(e.pending) == 0 {
		return TurnResult{}, &InvalidStateError{Op: "advance turn", State: e.state, Reason: "turn order is empty"}
	}

	roundChanged := false
	if e.turnIndex+1 >= len(e.order) {
		e.beginRoundLocked()
		roundChanged = true
	} else {
		e.turnIndex++
	}

	current := e.order[e.turnIndex]
	if roundChanged {
		e.logger.Info("round started", zap.Int("round", e.round))
	}
	e.logger.Debug("turn advanced",
		zap.Int("round", e.round),
		zap.Int("turn_index", e.turnIndex),
		zap.String("combatant_id", current.ID),
	)
	return TurnResult{
		Round:        e.round,
		TurnIndex:    e.turnIndex,
		Current:      current.clone(),
		RoundChanged: roundChanged,
	}, nil
}

// End closes an Active encounter: final HP is pushed to the roster, a log entry
// is recorded, the combat signal is lowered, and the encounter returns to Setup
// empty. If a roster write fails the encounter stays Active so End can be retried.
//
// Postcondition: On success State() == StateSetup, Round() == 0 and no combatants remain.
func (e *Encounter) End(ctx context.Context) (LogEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := e.tracer.Start(ctx, "combat.end")
	defer span.End()

	if e.state != StateActive {
		return LogEntry{}, &InvalidStateError{Op: "end", State: e.state}
	}

	all := e.combatantsLocked()
	entry := buildLogEntry(e.newID(), e.campaignID, e.now().UTC(), e.round, all)

	if err := e.pushRosterLocked(ctx); err != nil {
		e.logger.Error("ending encounter", zap.Error(err))
		return LogEntry{}, err
	}

	e.state = StateEnded
	e.history.Record(ctx, entry)
	e.logger.Info("encounter ended",
		zap.String("entry_id", entry.ID),
		zap.Int("rounds", entry.Rounds),
		zap.Int("survivors", len(entry.Survivors)),
		zap.Int("defeated", len(entry.Defeated)),
	)

	e.combatants = make(map[string]*Combatant)
	e.insertion = nil
	e.order = nil
	e.pending = nil
	e.round = 0
	e.turnIndex = 0
	if err := e.signal.SetCombatActive(ctx, false); err != nil {
		e.logger.Error("clearing combat signal", zap.Error(err))
	}
	e.state = StateSetup
	return entry.clone(), nil
}

// State returns the lifecycle state.
func (e *Encounter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Round returns the current round; 0 before Start.
func (e *Encounter) Round() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// TurnIndex returns the index of the acting combatant within TurnOrder.
func (e *Encounter) TurnIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turnIndex
}

// Combatant returns a copy of the combatant with the given id.
func (e *Encounter) Combatant(id string) (Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.combatants[id]
	if !ok {
		return Combatant{}, &NotFoundError{ID: id}
	}
	return c.clone(), nil
}

// Combatants returns copies of all combatants in insertion order.
func (e *Encounter) Combatants() []Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAll(e.combatantsLocked())
}

// TurnOrder returns copies of the combatants in turn order. While Active this is
// the frozen order; combatants added mid-round are not included until they merge.
func (e *Encounter) TurnOrder() []Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAll(e.order)
}

// Current returns the combatant whose turn it is.
//
// Postcondition: Returns *InvalidStateError outside StateActive or when the order is empty.
func (e *Encounter) Current() (Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return Combatant{}, &InvalidStateError{Op: "get current combatant", State: e.state}
	}
	if len(e.order) == 0 {
		return Combatant{}, &InvalidStateError{Op: "get current combatant", State: e.state, Reason: "turn order is empty"}
	}
	return e.order[e.turnIndex].clone(), nil
}

// History returns the completed encounters, most recent first.
func (e *Encounter) History() []LogEntry {
	return e.history.Entries()
}

// Snapshot returns a consistent copy of the whole encounter.
func (e *Encounter) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := func(cs []*Combatant) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}
	return Snapshot{
		State:      e.state,
		Round:      e.round,
		TurnIndex:  e.turnIndex,
		Combatants: cloneAll(e.combatantsLocked()),
		Order:      ids(e.order),
		Pending:    ids(e.pending),
	}
}

func (e *Encounter) insertLocked(c *Combatant) {
	e.combatants[c.ID] = c
	e.insertion = append(e.insertion, c.ID)
	if e.state == StateActive {
		e.pending = append(e.pending, c)
	}
}

// reorderLocked recomputes the order; a no-op while Active.
func (e *Encounter) reorderLocked() {
	if e.state == StateActive {
		return
	}
	e.order = ComputeOrder(e.combatantsLocked())
}

func (e *Encounter) raiseSignalLocked(ctx context.Context) error {
	if err := e.signal.SetCombatActive(ctx, true); err != nil {
		return fmt.Errorf("raising combat signal: %w", err)
	}
	return nil
}

func (e *Encounter) activateLocked(ctx context.Context) {
	_, span := e.tracer.Start(ctx, "combat.start")
	defer span.End()

	e.order = ComputeOrder(e.combatantsLocked())
	e.pending = nil
	e.round = 1
	e.turnIndex = 0
	e.state = StateActive
	span.SetAttributes(attribute.Int("combatants", len(e.order)))
	e.logger.Info("encounter started",
		zap.Int("combatants", len(e.order)),
		zap.Int64("campaign_id", e.campaignID),
	)
}

// beginRoundLocked wraps the turn pointer and merges pending arrivals.
func (e *Encounter) beginRoundLocked() {
	e.round++
	e.turnIndex = 0
	if len(e.pending) > 0 {
		e.order = mergeOrder(e.order, e.pending)
		e.pending = nil
	}
}

func (e *Encounter) combatantsLocked() []*Combatant {
	out := make([]*Combatant, 0, len(e.insertion))
	for _, id := range e.insertion {
		out = append(out, e.combatants[id])
	}
	return out
}

func (e *Encounter) findByRefLocked(characterID int64) *Combatant {
	for _, c := range e.combatants {
		if c.CharacterID == characterID {
			return c
		}
	}
	return nil
}

func (e *Encounter) lookupLocked(id string) (*Combatant, error) {
	c, ok := e.combatants[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return c, nil
}

func cloneAll(cs []*Combatant) []Combatant {
	out := make([]Combatant, len(cs))
	for i, c := range cs {
		out[i] = c.clone()
	}
	return out
}
