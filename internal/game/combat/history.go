package combat

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Survivor is a player character still standing when the encounter ended.
type Survivor struct {
	Name    string `json:"name"`
	FinalHP int    `json:"final_hp"`
	MaxHP   int    `json:"max_hp"`
}

// Casualty is any combatant at zero hit points when the encounter ended.
type Casualty struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// LogEntry summarises one completed encounter. Entries are never mutated after
// they are recorded; accessors hand out copies.
type LogEntry struct {
	ID         string
	CampaignID int64
	EndedAt    time.Time
	Rounds     int
	Survivors  []Survivor
	Defeated   []Casualty
}

func (e LogEntry) clone() LogEntry {
	e.Survivors = slices.Clone(e.Survivors)
	e.Defeated = slices.Clone(e.Defeated)
	return e
}

// buildLogEntry partitions combatants by CurrentHP > 0. Standing non-players
// appear in neither list.
func buildLogEntry(id string, campaignID int64, endedAt time.Time, rounds int, combatants []*Combatant) LogEntry {
	entry := LogEntry{
		ID:         id,
		CampaignID: campaignID,
		EndedAt:    endedAt,
		Rounds:     rounds,
		Survivors:  []Survivor{},
		Defeated:   []Casualty{},
	}
	for _, c := range combatants {
		switch {
		case c.Defeated():
			entry.Defeated = append(entry.Defeated, Casualty{Name: c.Name, Kind: c.Kind})
		case c.IsPlayer():
			entry.Survivors = append(entry.Survivors, Survivor{Name: c.Name, FinalHP: c.CurrentHP, MaxHP: c.MaxHP})
		}
	}
	return entry
}

// HistoryStore persists log entries beyond the life of the process.
type HistoryStore interface {
	// Append stores entry.
	Append(ctx context.Context, entry LogEntry) error
	// Recent returns up to limit entries for campaignID, most recent first.
	// A limit of 0 means no limit.
	Recent(ctx context.Context, campaignID int64, limit int) ([]LogEntry, error)
}

// History is the most-recent-first list of completed encounters.
// All methods are safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []LogEntry
	limit   int
	store   HistoryStore
	logger  *zap.Logger
}

// NewHistory creates an empty History.
// limit caps the number of in-memory entries (0 = unbounded); store may be nil.
//
// Precondition: limit >= 0; logger must be non-nil.
func NewHistory(limit int, store HistoryStore, logger *zap.Logger) *History {
	return &History{limit: limit, store: store, logger: logger}
}

// Load replaces the in-memory entries with the most recent entries from the store.
//
// Postcondition: Returns nil without change when no store is configured.
func (h *History) Load(ctx context.Context, campaignID int64) error {
	if h.store == nil {
		return nil
	}
	entries, err := h.store.Recent(ctx, campaignID, h.limit)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = entries
	return nil
}

// Record prepends entry and forwards it to the store.
// A store failure is logged; the in-memory history is still updated.
func (h *History) Record(ctx context.Context, entry LogEntry) {
	entry = entry.clone()

	h.mu.Lock()
	h.entries = slices.Insert(h.entries, 0, entry)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	h.mu.Unlock()

	if h.store == nil {
		return
	}
	if err := h.store.Append(ctx, entry); err != nil {
		h.logger.Warn("persisting encounter log",
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
	}
}

// Entries returns a copy of the history, most recent first.
func (h *History) Entries() []LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]LogEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of in-memory entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
