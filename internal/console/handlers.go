package console

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

func (c *Console) add(_ context.Context, args []string) error {
	opts, err := splitOptions(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 2 {
		return usage("add")
	}
	if err := opts.unknown("max", "ac", "mod", "init", "kind", "x", "roll"); err != nil {
		return err
	}

	hp, err := parseInt("current_hp", opts.positional[1])
	if err != nil {
		return err
	}
	t := combat.Template{Name: opts.positional[0], Kind: combat.KindEnemy, CurrentHP: hp}
	if t.MaxHP, err = opts.intOpt("max"); err != nil {
		return err
	}
	if t.ArmorClass, err = opts.intOpt("ac"); err != nil {
		return err
	}
	if t.Initiative, err = opts.intOpt("init"); err != nil {
		return err
	}
	if mod, err := opts.intOpt("mod"); err != nil {
		return err
	} else if mod != nil {
		t.InitiativeModifier = *mod
	}
	if raw, ok := opts.named["kind"]; ok {
		if t.Kind, err = combat.ParseKind(raw); err != nil {
			return err
		}
	}

	quantity := 1
	if raw, ok := opts.named["x"]; ok {
		if quantity, err = ParseQuantity(raw); err != nil {
			return err
		}
	}
	mode := c.defaultMode
	if raw, ok := opts.named["roll"]; ok {
		if mode, err = combat.ParseRollMode(raw); err != nil {
			return err
		}
	}
	return c.addBatch(t, quantity, mode)
}

func (c *Console) spawn(_ context.Context, args []string) error {
	if c.bestiary == nil {
		return fmt.Errorf("no bestiary loaded")
	}
	opts, err := splitOptions(args)
	if err != nil {
		return err
	}
	if len(opts.positional) < 1 || len(opts.positional) > 2 {
		return usage("spawn")
	}
	if err := opts.unknown("roll", "name"); err != nil {
		return err
	}
	m, ok := c.bestiary.Get(opts.positional[0])
	if !ok {
		return &combat.ValidationError{Field: "monster", Reason: fmt.Sprintf("no monster %q in the bestiary", opts.positional[0])}
	}
	quantity := 1
	if len(opts.positional) == 2 {
		if quantity, err = ParseQuantity(opts.positional[1]); err != nil {
			return err
		}
	}
	mode := c.defaultMode
	if raw, ok := opts.named["roll"]; ok {
		if mode, err = combat.ParseRollMode(raw); err != nil {
			return err
		}
	}
	return c.addBatch(m.ToTemplate(opts.named["name"]), quantity, mode)
}

func (c *Console) addBatch(t combat.Template, quantity int, mode combat.RollMode) error {
	added, err := c.enc.AddBatch(t, quantity, mode)
	if err != nil {
		return err
	}
	for _, cb := range added {
		c.view.printf("Added %s (%s, %d HP, initiative %d)", cb.Name, cb.Kind, cb.CurrentHP, cb.Initiative)
	}
	if c.enc.State() == combat.StateActive {
		c.view.notef("Joins the turn order at the start of the next round.")
	}
	return nil
}

func (c *Console) remove(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove")
	}
	target, err := c.resolveTarget(args[0])
	if err != nil {
		return err
	}
	if err := c.enc.RemoveCombatant(target.ID); err != nil {
		return err
	}
	c.view.printf("Removed %s", target.Name)
	return nil
}

func (c *Console) initiative(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usage("init")
	}
	target, err := c.resolveTarget(args[0])
	if err != nil {
		return err
	}
	value, err := parseInt("initiative", args[1])
	if err != nil {
		return err
	}
	updated, err := c.enc.SetInitiative(target.ID, value)
	if err != nil {
		return err
	}
	c.view.printf("%s initiative set to %d", updated.Name, updated.Initiative)
	if c.enc.State() == combat.StateActive {
		c.view.notef("The turn order stays as it is until the encounter ends.")
	}
	return nil
}

func (c *Console) pullParty(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage("party")
	}
	members, err := c.party.ListByCampaign(ctx, c.campaignID)
	if err != nil {
		return fmt.Errorf("loading party: %w", err)
	}
	party := make([]character.Character, len(members))
	for i, m := range members {
		party[i] = *m
	}
	if err := c.enc.SyncPartyAndStart(ctx, party); err != nil {
		return err
	}
	c.view.printf("Pulled %d party member(s) into the encounter.", len(party))
	return c.announceStart()
}

func (c *Console) start(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage("start")
	}
	if err := c.enc.Start(ctx); err != nil {
		return err
	}
	return c.announceStart()
}

func (c *Console) announceStart() error {
	c.view.heading(fmt.Sprintf("Round %d", c.enc.Round()))
	c.renderOrder()
	if cur, err := c.enc.Current(); err == nil {
		c.view.printf("%s is up.", cur.Name)
	}
	return nil
}

func (c *Console) next(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usage("next")
	}
	res, err := c.enc.NextTurn()
	if err != nil {
		return err
	}
	if res.RoundChanged {
		c.view.heading(fmt.Sprintf("Round %d", res.Round))
	}
	c.view.printf("%s is up (%s).", res.Current.Name, hpText(res.Current))
	if res.Current.Defeated() {
		c.view.notef("%s is down.", res.Current.Name)
	}
	return nil
}

func (c *Console) damage(_ context.Context, args []string) error {
	return c.mutateHP("dmg", args, c.enc.ApplyDamage, "takes %d damage")
}

func (c *Console) heal(_ context.Context, args []string) error {
	return c.mutateHP("heal", args, c.enc.ApplyHealing, "regains %d HP")
}

func (c *Console) mutateHP(cmd string, args []string, apply func(string, int) (combat.Combatant, error), verb string) error {
	if len(args) != 2 {
		return usage(cmd)
	}
	target, err := c.resolveTarget(args[0])
	if err != nil {
		return err
	}
	amount, err := ParseAmount(args[1])
	if err != nil {
		return err
	}
	updated, err := apply(target.ID, amount)
	if err != nil {
		return err
	}
	c.view.printf("%s %s (%s).", updated.Name, fmt.Sprintf(verb, amount), hpText(updated))
	if updated.Defeated() {
		c.view.warnf("%s is down!", updated.Name)
	}
	return nil
}

func (c *Console) setConditions(_ context.Context, args []string) error {
	if len(args) < 1 {
		return usage("cond")
	}
	target, err := c.resolveTarget(args[0])
	if err != nil {
		return err
	}
	labels := args[1:]
	if len(labels) == 1 && labels[0] == "-" {
		labels = nil
	}
	updated, err := c.enc.SetConditions(target.ID, labels)
	if err != nil {
		return err
	}
	if len(updated.Conditions) == 0 {
		c.view.printf("%s has no conditions.", updated.Name)
	} else {
		c.view.printf("%s: %s", updated.Name, strings.Join(updated.Conditions, ", "))
	}
	for _, label := range target.Conditions {
		if !updated.HasCondition(label) {
			c.view.notef("%s removed", label)
		}
	}
	if c.conditions == nil {
		return nil
	}
	// Only newly gained conditions are described.
	for _, label := range updated.Conditions {
		if !target.HasCondition(label) {
			c.view.notef("%s", c.conditions.Describe(label))
		}
	}
	return nil
}

func (c *Console) end(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage("end")
	}
	entry, err := c.enc.End(ctx)
	if err != nil {
		return err
	}
	c.view.heading("Encounter over")
	c.renderEntry(entry)
	return nil
}

func (c *Console) order(_ context.Context, _ []string) error {
	if len(c.enc.Combatants()) == 0 {
		c.view.printf("No combatants. Use add, spawn or party.")
		return nil
	}
	if c.enc.State() == combat.StateActive {
		c.view.heading(fmt.Sprintf("Round %d", c.enc.Round()))
	}
	c.renderOrder()
	return nil
}

func (c *Console) history(_ context.Context, _ []string) error {
	entries := c.enc.History()
	if len(entries) == 0 {
		c.view.printf("No encounters recorded yet.")
		return nil
	}
	for _, e := range entries {
		c.renderEntry(e)
	}
	return nil
}

func (c *Console) listConditions(_ context.Context, _ []string) error {
	if c.conditions == nil {
		return fmt.Errorf("no condition catalog loaded")
	}
	for _, d := range c.conditions.All() {
		c.view.printf("%s", c.conditions.Describe(d.ID))
	}
	return nil
}

func (c *Console) listBestiary(_ context.Context, _ []string) error {
	if c.bestiary == nil {
		return fmt.Errorf("no bestiary loaded")
	}
	for _, id := range c.bestiary.IDs() {
		m, _ := c.bestiary.Get(id)
		ac := "-"
		if m.AC != nil {
			ac = fmt.Sprint(*m.AC)
		}
		c.view.printf("%-10s %s: %d HP, AC %s, init %+d", id, m.Name, m.HP, ac, m.InitiativeModifier)
	}
	return nil
}

func (c *Console) roll(_ context.Context, args []string) error {
	if c.dice == nil {
		return fmt.Errorf("no dice roller configured")
	}
	if len(args) == 0 {
		return usage("roll")
	}
	result, err := c.dice.RollExpr(strings.Join(args, " "))
	if err != nil {
		return &combat.ValidationError{Field: "expression", Reason: err.Error()}
	}
	c.view.printf("%s", result)
	return nil
}

func (c *Console) help(_ context.Context, _ []string) error {
	byCat := c.registry.CommandsByCategory()
	for _, cat := range []string{CategorySetup, CategoryCombat, CategoryInfo, CategorySystem} {
		c.view.heading(cat)
		for _, cmd := range byCat[cat] {
			c.view.printf("  %-60s %s", cmd.Usage, cmd.Help)
		}
	}
	return nil
}

func (c *Console) quit(_ context.Context, _ []string) error {
	if c.enc.State() == combat.StateActive {
		c.logger.Warn("leaving with an active encounter; hit point changes are discarded",
			zap.Int("round", c.enc.Round()),
		)
	}
	return ErrQuit
}

func hpText(cb combat.Combatant) string {
	return fmt.Sprintf("%d/%d HP", cb.CurrentHP, cb.MaxHP)
}
