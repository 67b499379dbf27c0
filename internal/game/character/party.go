package character

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sheet is the YAML form of a character used to seed a roster.
type Sheet struct {
	Name               string `yaml:"name"`
	Class              string `yaml:"class"`
	Level              int    `yaml:"level"`
	Player             string `yaml:"player"`
	MaxHP              int    `yaml:"max_hp"`
	CurrentHP          *int   `yaml:"current_hp"`
	AC                 *int   `yaml:"ac"`
	InitiativeModifier int    `yaml:"initiative_modifier"`
}

// Build converts a sheet into a validated Character for campaignID.
// A missing current_hp means the character is at full health; a missing
// level defaults to 1.
//
// Postcondition: Returns a Character with ID 0, or an error.
func (s Sheet) Build(campaignID int64) (*Character, error) {
	c := &Character{
		CampaignID:         campaignID,
		Name:               s.Name,
		Class:              s.Class,
		Level:              s.Level,
		Player:             s.Player,
		MaxHP:              s.MaxHP,
		CurrentHP:          s.MaxHP,
		InitiativeModifier: s.InitiativeModifier,
	}
	if c.Level == 0 {
		c.Level = 1
	}
	if s.CurrentHP != nil {
		c.CurrentHP = *s.CurrentHP
	}
	if s.AC != nil {
		ac := *s.AC
		c.ArmorClass = &ac
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

type partyFile struct {
	Party []Sheet `yaml:"party"`
}

// ParseParty decodes a party document and builds every member.
//
// Postcondition: Returns all members or the first error; unknown keys are rejected.
func ParseParty(data []byte, campaignID int64) ([]*Character, error) {
	var f partyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing party YAML: %w", err)
	}
	out := make([]*Character, 0, len(f.Party))
	for i, s := range f.Party {
		c, err := s.Build(campaignID)
		if err != nil {
			return nil, fmt.Errorf("party member %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadParty reads a party document from path.
//
// Precondition: path must name a readable YAML file.
func LoadParty(path string, campaignID int64) ([]*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading party file %q: %w", path, err)
	}
	return ParseParty(data, campaignID)
}
