package combat

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// Roster is the write side of the party roster. The encounter calls it only
// from End, once per linked combatant.
type Roster interface {
	WriteCurrentHP(ctx context.Context, characterID int64, hp int) error
}

// CombatSignal publishes whether a combat is in progress so the rest of the
// application can gate campaign switching and similar affordances.
type CombatSignal interface {
	SetCombatActive(ctx context.Context, active bool) error
}

// templateFromCharacter maps a roster record to a player combatant template.
func templateFromCharacter(ch character.Character) Template {
	maxHP := ch.MaxHP
	var ac *int
	if ch.ArmorClass != nil {
		v := *ch.ArmorClass
		ac = &v
	}
	return Template{
		Name:               ch.Name,
		Kind:               KindPlayer,
		CurrentHP:          ch.CurrentHP,
		MaxHP:              &maxHP,
		ArmorClass:         ac,
		InitiativeModifier: ch.InitiativeModifier,
		CharacterID:        ch.ID,
	}
}

// pulled is a validated party member awaiting commit.
type pulled struct {
	tmpl       Template
	initiative int
	existing   *Combatant
}

// pullPartyLocked validates every member of party and rolls fresh initiative.
// Members of other campaigns are skipped when the encounter is bound to one.
// No encounter state is touched.
func (e *Encounter) pullPartyLocked(party []character.Character) ([]pulled, error) {
	byRef := make(map[int64]*Combatant)
	for _, c := range e.combatants {
		if c.Linked() {
			byRef[c.CharacterID] = c
		}
	}

	seen := make(map[int64]bool, len(party))
	out := make([]pulled, 0, len(party))
	for _, ch := range party {
		if e.campaignID != 0 && ch.CampaignID != e.campaignID {
			continue
		}
		if ch.ID <= 0 {
			return nil, invalid("character_id", "party member %q has no roster id", ch.Name)
		}
		if seen[ch.ID] {
			return nil, invalid("character_id", "party member %d listed twice", ch.ID)
		}
		seen[ch.ID] = true

		tmpl := templateFromCharacter(ch)
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("party member %q: %w", ch.Name, err)
		}
		out = append(out, pulled{
			tmpl:       tmpl,
			initiative: RollInitiative(e.roller, tmpl.InitiativeModifier),
			existing:   byRef[ch.ID],
		})
	}
	return out, nil
}

// commitPartyLocked applies validated pulls: existing combatants are updated in
// place, new members are appended in party order.
func (e *Encounter) commitPartyLocked(members []pulled) {
	for _, m := range members {
		if m.existing != nil {
			c := m.existing
			c.Name = m.tmpl.Name
			c.CurrentHP = m.tmpl.CurrentHP
			c.MaxHP = *m.tmpl.MaxHP
			c.ArmorClass = m.tmpl.ArmorClass
			c.InitiativeModifier = m.tmpl.InitiativeModifier
			c.Initiative = m.initiative
			e.logger.Debug("party member refreshed",
				zap.String("combatant_id", c.ID),
				zap.Int64("character_id", c.CharacterID),
				zap.Int("initiative", c.Initiative),
			)
			continue
		}
		// Validated in pullPartyLocked; NewCombatant cannot fail here.
		c, _ := NewCombatant(e.newID(), m.tmpl, m.initiative)
		e.insertLocked(c)
		e.logger.Debug("party member joined",
			zap.String("combatant_id", c.ID),
			zap.Int64("character_id", c.CharacterID),
			zap.Int("initiative", c.Initiative),
		)
	}
}

// pushRosterLocked writes final HP for every linked combatant.
//
// Postcondition: Returns the first write error; earlier writes are not undone,
// which is safe because WriteCurrentHP is idempotent.
func (e *Encounter) pushRosterLocked(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "combat.push_roster")
	defer span.End()

	pushed := 0
	for _, id := range e.insertion {
		c := e.combatants[id]
		if !c.Linked() {
			continue
		}
		if err := e.roster.WriteCurrentHP(ctx, c.CharacterID, c.CurrentHP); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "roster write failed")
			return fmt.Errorf("writing hp for character %d: %w", c.CharacterID, err)
		}
		pushed++
	}
	span.SetAttributes(attribute.Int("roster.pushed", pushed))
	return nil
}
