package console_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/console"
)

func TestService_RunsUntilQuit(t *testing.T) {
	f := newFixture(t)
	in := strings.NewReader("add Goblin 7 init=10\nbogus\norder\nquit\nadd Never 1\n")
	svc := console.NewService(f.console, in, zap.NewNop())

	require.NoError(t, svc.Start(context.Background()))

	out := f.out.String()
	assert.Contains(t, out, "Added Goblin")
	assert.Contains(t, out, "error: unknown command")
	assert.NotContains(t, out, "Never")
	assert.Len(t, f.enc.Combatants(), 1)
}

func TestService_EOFIsCleanExit(t *testing.T) {
	f := newFixture(t)
	svc := console.NewService(f.console, strings.NewReader("add Goblin 7\n"), zap.NewNop())
	assert.NoError(t, svc.Start(context.Background()))
	assert.Len(t, f.enc.Combatants(), 1)
}

func TestService_Stop(t *testing.T) {
	f := newFixture(t)
	r, w := io.Pipe()
	defer w.Close()
	svc := console.NewService(f.console, r, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()
	svc.Stop()
	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestService_ContextCancel(t *testing.T) {
	f := newFixture(t)
	r, w := io.Pipe()
	defer w.Close()
	svc := console.NewService(f.console, r, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
