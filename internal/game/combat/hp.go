package combat

import "go.uber.org/zap"

// applyDamage lowers CurrentHP by amount, flooring at zero.
//
// Precondition: amount > 0.
// Postcondition: 0 <= CurrentHP <= MaxHP.
func (c *Combatant) applyDamage(amount int) {
	c.CurrentHP = max(0, c.CurrentHP-amount)
}

// applyHealing raises CurrentHP by amount, capping at MaxHP.
//
// Precondition: amount > 0.
// Postcondition: 0 <= CurrentHP <= MaxHP.
func (c *Combatant) applyHealing(amount int) {
	if amount >= c.MaxHP-c.CurrentHP {
		c.CurrentHP = c.MaxHP
		return
	}
	c.CurrentHP += amount
}

func validateAmount(amount int) error {
	if amount <= 0 {
		return invalid("amount", "must be a positive integer, got %d", amount)
	}
	return nil
}

// ApplyDamage deals amount damage to combatant id.
//
// Precondition: the encounter is Active; amount > 0.
// Postcondition: CurrentHP == max(0, old-amount), or an error and no change.
func (e *Encounter) ApplyDamage(id string, amount int) (Combatant, error) {
	return e.mutateHP("apply damage", id, amount, (*Combatant).applyDamage)
}

// ApplyHealing restores amount hit points to combatant id.
//
// Precondition: the encounter is Active; amount > 0.
// Postcondition: CurrentHP == min(MaxHP, old+amount), or an error and no change.
func (e *Encounter) ApplyHealing(id string, amount int) (Combatant, error) {
	return e.mutateHP("apply healing", id, amount, (*Combatant).applyHealing)
}

func (e *Encounter) mutateHP(op, id string, amount int, apply func(*Combatant, int)) (Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return Combatant{}, &InvalidStateError{Op: op, State: e.state}
	}
	if err := validateAmount(amount); err != nil {
		return Combatant{}, err
	}
	c, err := e.lookupLocked(id)
	if err != nil {
		return Combatant{}, err
	}

	before := c.CurrentHP
	apply(c, amount)
	e.logger.Debug(op,
		zap.String("combatant_id", c.ID),
		zap.Int("amount", amount),
		zap.Int("hp_before", before),
		zap.Int("hp_after", c.CurrentHP),
	)
	if c.Defeated() && before > 0 {
		e.logger.Info("combatant defeated",
			zap.String("combatant_id", c.ID),
			zap.String("name", c.Name),
			zap.Int("round", e.round),
		)
	}
	return c.clone(), nil
}

// SetConditions replaces the condition set of combatant id. Labels are free-form;
// they are trimmed, lowercased and de-duplicated. Allowed in Setup and Active.
func (e *Encounter) SetConditions(id string, conditions []string) (Combatant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.lookupLocked(id)
	if err != nil {
		return Combatant{}, err
	}
	c.Conditions = normalizeConditions(conditions)
	e.logger.Debug("conditions set",
		zap.String("combatant_id", c.ID),
		zap.Strings("conditions", c.Conditions),
	)
	return c.clone(), nil
}
