package conversation

import (
	"sync"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// ProcessingState reports whether an utterance is in flight.
type ProcessingState int32

const (
	StateIdle ProcessingState = iota
	StateProcessing
)

func (s ProcessingState) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// Events is the typed subscription surface the presentation layer observes.
// Handlers run synchronously on the orchestrating goroutine; the engine has no
// dependency on any UI control type.
type Events struct {
	mu             sync.RWMutex
	turnAppended   []func(ports.Turn)
	stateChanged   []func(ProcessingState)
	commandOutcome []func(ports.Command, Outcome)
}

// OnTurnAppended registers a handler for newly recorded turns.
func (e *Events) OnTurnAppended(fn func(ports.Turn)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.turnAppended = append(e.turnAppended, fn)
}

// OnProcessingStateChanged registers a handler for state transitions.
func (e *Events) OnProcessingStateChanged(fn func(ProcessingState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateChanged = append(e.stateChanged, fn)
}

// OnCommandOutcome registers a handler for per-command outcomes.
func (e *Events) OnCommandOutcome(fn func(ports.Command, Outcome)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commandOutcome = append(e.commandOutcome, fn)
}

func (e *Events) emitTurnAppended(turn ports.Turn) {
	e.mu.RLock()
	handlers := e.turnAppended
	e.mu.RUnlock()
	for _, fn := range handlers {
		fn(turn)
	}
}

func (e *Events) emitStateChanged(state ProcessingState) {
	e.mu.RLock()
	handlers := e.stateChanged
	e.mu.RUnlock()
	for _, fn := range handlers {
		fn(state)
	}
}

func (e *Events) emitCommandOutcome(cmd ports.Command, outcome Outcome) {
	e.mu.RLock()
	handlers := e.commandOutcome
	e.mu.RUnlock()
	for _, fn := range handlers {
		fn(cmd, outcome)
	}
}
