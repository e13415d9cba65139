package conversation

import (
	"sync"
	"time"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// DefaultHistoryCapacity bounds the ledger when no capacity is configured.
const DefaultHistoryCapacity = 100

// Ledger is the bounded, ordered log of conversation turns. Owned exclusively
// by the orchestrator; capacity enforcement is unconditional and silent, with
// the oldest turns evicted first. Ordering is by assignment sequence, so turns
// arriving out of wall-clock order still read back in recording order.
type Ledger struct {
	mu       sync.RWMutex
	capacity int
	maxText  int
	seq      uint64
	turns    []ports.Turn
}

// NewLedger creates a ledger with the given capacity and per-turn text bound.
// Non-positive arguments fall back to defaults (capacity 100, unbounded text).
func NewLedger(capacity, maxTextLen int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Ledger{capacity: capacity, maxText: maxTextLen}
}

// Record appends a turn, evicting the oldest if capacity would be exceeded.
func (l *Ledger) Record(role ports.Role, text string) ports.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxText > 0 && len(text) > l.maxText {
		text = text[:l.maxText]
	}

	l.seq++
	turn := ports.Turn{
		Role:      role,
		Text:      text,
		Seq:       l.seq,
		Timestamp: time.Now(),
	}

	l.turns = append(l.turns, turn)
	if len(l.turns) > l.capacity {
		l.turns = l.turns[len(l.turns)-l.capacity:]
	}

	return turn
}

// Recent returns the last min(n, length) turns in original order. The ledger
// is never mutated by reads.
func (l *Ledger) Recent(n int) []ports.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(l.turns) {
		n = len(l.turns)
	}

	out := make([]ports.Turn, n)
	copy(out, l.turns[len(l.turns)-n:])
	return out
}

// Len reports the number of retained turns.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
