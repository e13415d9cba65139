package tree

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AutoSaver periodically invokes a save operation on a fixed interval. It is
// owned by the presentation layer and may run concurrently with editing; it
// never touches the conversation engine's processing flag.
type AutoSaver struct {
	interval time.Duration
	save     func(ctx context.Context) error
	logger   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoSaver creates a stopped auto-saver.
func NewAutoSaver(interval time.Duration, save func(ctx context.Context) error, logger zerolog.Logger) *AutoSaver {
	return &AutoSaver{interval: interval, save: save, logger: logger}
}

// Start begins the save loop. Calling Start on a running saver is a no-op.
func (a *AutoSaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(ctx, a.done)
}

// Stop cancels the save loop and waits for it to exit. Idempotent.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *AutoSaver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.save(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("autosave failed")
			}
		}
	}
}
