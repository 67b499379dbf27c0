//go:build wireinject

package app

import (
	"context"
	"io"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// Build wires the application. The returned cleanup func releases storage
// and flushes traces.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (*App, func(), error) {
	wire.Build(
		StorageSet,
		EngineSet,
		ConsoleSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
