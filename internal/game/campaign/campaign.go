// Package campaign defines the campaign record the roster and encounter
// history hang off.
package campaign

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a campaign lookup yields no results.
var ErrNotFound = errors.New("campaign not found")

// ErrNameTaken is returned when creating a campaign with a name already in use.
var ErrNameTaken = errors.New("campaign name already taken")

// Campaign is a persistent campaign. CombatActive is the signal the encounter
// engine raises while a fight is running so other views can lock the roster.
type Campaign struct {
	ID           int64
	Name         string
	CombatActive bool
	CreatedAt    time.Time
}

// Validate checks the record before it is stored.
func (c *Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("campaign name must not be empty")
	}
	return nil
}
