// Package character defines the roster's player character record.
package character

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Character is a persistent player character belonging to one campaign.
// The roster owns this record; an encounter only ever holds a working copy.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
type Character struct {
	ID         int64
	CampaignID int64

	Name   string
	Class  string
	Level  int
	Player string // name of the person playing the character

	CurrentHP int
	MaxHP     int
	// ArmorClass is nil when the sheet has no AC recorded.
	ArmorClass         *int
	InitiativeModifier int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the record before it is stored.
//
// Postcondition: Returns nil iff Name is non-empty, CampaignID > 0, Level >= 1,
// 0 <= CurrentHP <= MaxHP, MaxHP >= 1, and ArmorClass (if set) >= 0.
func (c *Character) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.CampaignID <= 0 {
		errs = append(errs, fmt.Errorf("campaign_id must be > 0, got %d", c.CampaignID))
	}
	if c.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", c.Level))
	}
	if c.MaxHP < 1 {
		errs = append(errs, fmt.Errorf("max_hp must be >= 1, got %d", c.MaxHP))
	}
	if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
		errs = append(errs, fmt.Errorf("current_hp must be within [0, %d], got %d", c.MaxHP, c.CurrentHP))
	}
	if c.ArmorClass != nil && *c.ArmorClass < 0 {
		errs = append(errs, fmt.Errorf("armor_class must be >= 0, got %d", *c.ArmorClass))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character %q: %w", c.Name, errors.Join(errs...))
	}
	return nil
}

// ErrNotFound is returned when a character lookup yields no results.
var ErrNotFound = errors.New("character not found")

// ErrNameTaken is returned when creating a character with a name already used in the campaign.
var ErrNameTaken = errors.New("character name already taken")
