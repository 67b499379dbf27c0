// Package importer loads a party document into a persistent roster.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// CampaignStore finds or creates the campaign a party belongs to.
type CampaignStore interface {
	GetByName(ctx context.Context, name string) (*campaign.Campaign, error)
	Create(ctx context.Context, name string) (*campaign.Campaign, error)
}

// CharacterStore persists roster characters.
type CharacterStore interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
}

// Report summarises one import run.
type Report struct {
	CampaignID int64
	Created    []string
	Skipped    []string
}

// Importer orchestrates a party import.
type Importer struct {
	campaigns  CampaignStore
	characters CharacterStore
	out        io.Writer
}

// New constructs an Importer writing progress lines to out.
//
// Precondition: all arguments must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(campaigns CampaignStore, characters CharacterStore, out io.Writer) *Importer {
	return &Importer{campaigns: campaigns, characters: characters, out: out}
}

// Run reads the party document at path and stores every member in the named
// campaign, creating the campaign when it does not exist. Members whose name
// is already on the campaign roster are skipped, so re-running an import is
// harmless.
//
// Precondition: campaignName must be non-empty; path must name a party YAML file.
// Postcondition: Returns a Report, or an error after which some members may
// already have been stored.
func (imp *Importer) Run(ctx context.Context, campaignName, path string) (Report, error) {
	overall := time.Now()

	camp, err := imp.campaigns.GetByName(ctx, campaignName)
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		if camp, err = imp.campaigns.Create(ctx, campaignName); err != nil {
			return Report{}, fmt.Errorf("creating campaign %q: %w", campaignName, err)
		}
		fmt.Fprintf(imp.out, "created campaign %q (id=%d)\n", camp.Name, camp.ID)
	case err != nil:
		return Report{}, fmt.Errorf("looking up campaign %q: %w", campaignName, err)
	default:
		fmt.Fprintf(imp.out, "using campaign %q (id=%d)\n", camp.Name, camp.ID)
	}

	party, err := character.LoadParty(path, camp.ID)
	if err != nil {
		return Report{}, err
	}

	report := Report{CampaignID: camp.ID}
	for _, c := range party {
		stored, err := imp.characters.Create(ctx, c)
		if errors.Is(err, character.ErrNameTaken) {
			report.Skipped = append(report.Skipped, c.Name)
			fmt.Fprintf(imp.out, "skip    %s (already on the roster)\n", c.Name)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("storing %q: %w", c.Name, err)
		}
		report.Created = append(report.Created, stored.Name)
		fmt.Fprintf(imp.out, "added   %s (id=%d, %d/%d HP)\n", stored.Name, stored.ID, stored.CurrentHP, stored.MaxHP)
	}

	fmt.Fprintf(imp.out, "total   %d added, %d skipped in %s\n",
		len(report.Created), len(report.Skipped), time.Since(overall).Round(time.Millisecond))
	return report, nil
}
