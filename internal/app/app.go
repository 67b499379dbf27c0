// Package app assembles the encounter console from configuration. The
// dependency graph is declared in wire.go and generated into wire_gen.go.
package app

import (
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/console"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// App is the fully wired application.
type App struct {
	Config    config.Config
	Encounter *combat.Encounter
	Console   *console.Console
	Service   *console.Service
}
