// Package memory provides process-local implementations of the roster,
// campaign and encounter history stores. They back the console's offline
// mode and stand in for PostgreSQL in tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// CharacterStore is an in-memory party roster.
type CharacterStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*character.Character
	now    func() time.Time
}

// NewCharacterStore creates an empty roster.
func NewCharacterStore() *CharacterStore {
	return &CharacterStore{byID: make(map[int64]*character.Character), now: time.Now}
}

func copyCharacter(c *character.Character) *character.Character {
	out := *c
	if c.ArmorClass != nil {
		ac := *c.ArmorClass
		out.ArmorClass = &ac
	}
	return &out
}

// Create stores a copy of c with a fresh ID.
//
// Postcondition: Returns the stored character, or character.ErrNameTaken when
// the campaign already has a character by that name.
func (s *CharacterStore) Create(_ context.Context, c *character.Character) (*character.Character, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.CampaignID == c.CampaignID && strings.EqualFold(existing.Name, c.Name) {
			return nil, character.ErrNameTaken
		}
	}
	s.nextID++
	stored := copyCharacter(c)
	stored.ID = s.nextID
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.byID[stored.ID] = stored
	return copyCharacter(stored), nil
}

// ListByCampaign returns copies of the campaign's party in creation order.
func (s *CharacterStore) ListByCampaign(_ context.Context, campaignID int64) ([]*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*character.Character, 0)
	for _, c := range s.byID {
		if c.CampaignID == campaignID {
			out = append(out, copyCharacter(c))
		}
	}
	slices.SortFunc(out, func(a, b *character.Character) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// GetByID returns a copy of the character or character.ErrNotFound.
func (s *CharacterStore) GetByID(_ context.Context, id int64) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, character.ErrNotFound
	}
	return copyCharacter(c), nil
}

// WriteCurrentHP stores hp clamped to [0, MaxHP].
func (s *CharacterStore) WriteCurrentHP(_ context.Context, id int64, hp int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return character.ErrNotFound
	}
	c.CurrentHP = min(max(hp, 0), c.MaxHP)
	c.UpdatedAt = s.now()
	return nil
}

// CampaignStore is an in-memory campaign table.
type CampaignStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*campaign.Campaign
}

// NewCampaignStore creates an empty campaign table.
func NewCampaignStore() *CampaignStore {
	return &CampaignStore{byID: make(map[int64]*campaign.Campaign)}
}

// Create stores a new campaign.
//
// Postcondition: Returns the campaign with ID set, or campaign.ErrNameTaken.
func (s *CampaignStore) Create(_ context.Context, name string) (*campaign.Campaign, error) {
	c := &campaign.Campaign{Name: name, CreatedAt: time.Now()}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == name {
			return nil, campaign.ErrNameTaken
		}
	}
	s.nextID++
	c.ID = s.nextID
	s.byID[c.ID] = c
	out := *c
	return &out, nil
}

// Seed stores c under its own ID, replacing any campaign with that ID. Later
// Create calls allocate IDs above it.
func (s *CampaignStore) Seed(c campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID < 1 {
		return fmt.Errorf("campaign id must be >= 1, got %d", c.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = &c
	s.nextID = max(s.nextID, c.ID)
	return nil
}

// GetByID returns a copy of the campaign or campaign.ErrNotFound.
func (s *CampaignStore) GetByID(_ context.Context, id int64) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	out := *c
	return &out, nil
}

// GetByName returns a copy of the campaign or campaign.ErrNotFound.
func (s *CampaignStore) GetByName(_ context.Context, name string) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.byID {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, campaign.ErrNotFound
}

// SetCombatActive raises or clears the campaign's combat flag.
func (s *CampaignStore) SetCombatActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.CombatActive = active
	return nil
}

// IsCombatActive reports the campaign's combat flag.
func (s *CampaignStore) IsCombatActive(ctx context.Context, id int64) (bool, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c.CombatActive, nil
}

// Signal binds the combat flag of one campaign to the encounter engine.
func (s *CampaignStore) Signal(campaignID int64) combat.CombatSignal {
	return campaignSignal{store: s, id: campaignID}
}

type campaignSignal struct {
	store *CampaignStore
	id    int64
}

func (s campaignSignal) SetCombatActive(ctx context.Context, active bool) error {
	return s.store.SetCombatActive(ctx, s.id, active)
}

// EncounterLogStore is an in-memory encounter history sink.
type EncounterLogStore struct {
	mu      sync.RWMutex
	entries []combat.LogEntry
}

// NewEncounterLogStore creates an empty history sink.
func NewEncounterLogStore() *EncounterLogStore {
	return &EncounterLogStore{}
}

// Append stores entry; an entry whose ID is already stored is ignored.
func (s *EncounterLogStore) Append(_ context.Context, entry combat.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == entry.ID {
			return nil
		}
	}
	entry.Survivors = slices.Clone(entry.Survivors)
	entry.Defeated = slices.Clone(entry.Defeated)
	s.entries = append(s.entries, entry)
	return nil
}

// Recent returns up to limit entries for campaignID, most recent first.
// A limit of 0 returns every entry.
func (s *EncounterLogStore) Recent(_ context.Context, campaignID int64, limit int) ([]combat.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]combat.LogEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.CampaignID != campaignID {
			continue
		}
		e.Survivors = slices.Clone(e.Survivors)
		e.Defeated = slices.Clone(e.Defeated)
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b combat.LogEntry) int { return b.EndedAt.Compare(a.EndedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
