package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Service runs a Console over a line-oriented input stream. It satisfies
// server.Service.
type Service struct {
	console *Console
	in      io.Reader
	logger  *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewService creates a Service reading commands from in.
//
// Precondition: console, in and logger must be non-nil.
func NewService(console *Console, in io.Reader, logger *zap.Logger) *Service {
	return &Service{console: console, in: in, logger: logger, stop: make(chan struct{})}
}

// Start reads and executes lines until the input ends, quit is entered,
// ctx is cancelled, or Stop is called. Command failures are reported to the
// user and do not end the loop.
//
// Postcondition: Returns nil on a clean exit or the input read error.
func (s *Service) Start(ctx context.Context) error {
	defer s.Stop()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-s.stop:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		s.console.Prompt()
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			err := s.console.Execute(ctx, line)
			switch {
			case errors.Is(err, ErrQuit):
				return nil
			case err != nil:
				s.logger.Debug("command failed", zap.String("line", line), zap.Error(err))
				s.console.ReportError(err)
			}
		}
	}
}

// Stop ends a running Start. It is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
