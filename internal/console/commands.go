// Package console is the text front end of the encounter engine. It parses
// typed command lines into validated engine calls and renders the results.
package console

// Categories for organizing commands in help output.
const (
	CategorySetup  = "setup"
	CategoryCombat = "combat"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to their implementations.
const (
	HandlerAdd        = "add"
	HandlerSpawn      = "spawn"
	HandlerRemove     = "remove"
	HandlerInit       = "init"
	HandlerParty      = "party"
	HandlerStart      = "start"
	HandlerNext       = "next"
	HandlerDamage     = "damage"
	HandlerHeal       = "heal"
	HandlerCondition  = "condition"
	HandlerEnd        = "end"
	HandlerOrder      = "order"
	HandlerHistory    = "history"
	HandlerConditions = "conditions"
	HandlerBestiary   = "bestiary"
	HandlerRoll       = "roll"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the implementation.
	Handler string
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		// Setup
		{Name: "add", Aliases: []string{"a"}, Usage: `add <name> <hp> [max=N] [ac=N] [mod=N] [init=N] [kind=enemy|ally] [x=N] [roll=group|individual]`, Help: "Add a combatant (x=N adds a numbered batch)", Category: CategorySetup, Handler: HandlerAdd},
		{Name: "spawn", Aliases: []string{"sp"}, Usage: `spawn <monster> [count] [roll=group|individual] [name="..."]`, Help: "Add monsters from the bestiary", Category: CategorySetup, Handler: HandlerSpawn},
		{Name: "remove", Aliases: []string{"rm"}, Usage: "remove <target>", Help: "Remove a combatant", Category: CategorySetup, Handler: HandlerRemove},
		{Name: "init", Aliases: []string{"initiative"}, Usage: "init <target> <value>", Help: "Override a combatant's initiative", Category: CategorySetup, Handler: HandlerInit},
		{Name: "party", Aliases: []string{"pull"}, Usage: "party", Help: "Pull the campaign party in, roll initiative and start", Category: CategorySetup, Handler: HandlerParty},
		{Name: "start", Aliases: []string{"begin", "fight"}, Usage: "start", Help: "Start the encounter", Category: CategorySetup, Handler: HandlerStart},

		// Combat
		{Name: "next", Aliases: []string{"n"}, Usage: "next", Help: "Advance to the next turn", Category: CategoryCombat, Handler: HandlerNext},
		{Name: "dmg", Aliases: []string{"damage", "hit"}, Usage: "dmg <target> <amount>", Help: "Apply damage", Category: CategoryCombat, Handler: HandlerDamage},
		{Name: "heal", Aliases: []string{"h"}, Usage: "heal <target> <amount>", Help: "Apply healing", Category: CategoryCombat, Handler: HandlerHeal},
		{Name: "cond", Aliases: []string{"condition"}, Usage: "cond <target> [label ...|-]", Help: "Replace a combatant's conditions (- clears)", Category: CategoryCombat, Handler: HandlerCondition},
		{Name: "end", Aliases: []string{"stop"}, Usage: "end", Help: "End the encounter and write HP back to the roster", Category: CategoryCombat, Handler: HandlerEnd},

		// Info
		{Name: "order", Aliases: []string{"ls", "list"}, Usage: "order", Help: "Show the turn order", Category: CategoryInfo, Handler: HandlerOrder},
		{Name: "history", Aliases: []string{"log"}, Usage: "history", Help: "Show completed encounters", Category: CategoryInfo, Handler: HandlerHistory},
		{Name: "conditions", Aliases: []string{"catalog"}, Usage: "conditions", Help: "List standard conditions", Category: CategoryInfo, Handler: HandlerConditions},
		{Name: "bestiary", Aliases: []string{"monsters"}, Usage: "bestiary", Help: "List monster templates", Category: CategoryInfo, Handler: HandlerBestiary},
		{Name: "roll", Aliases: []string{"r", "dice"}, Usage: "roll <NdS[+M]>", Help: "Roll a dice expression such as 1d20+3", Category: CategoryInfo, Handler: HandlerRoll},

		// System
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the console", Category: CategorySystem, Handler: HandlerQuit},
	}
}
