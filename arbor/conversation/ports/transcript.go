package convoports

import "context"

// TranscriptStore persists conversation turns off the turn's critical path.
// Failures are logged, never surfaced as turn failures.
type TranscriptStore interface {
	SaveTurn(ctx context.Context, conversationID string, turn Turn) error
	LoadRecent(ctx context.Context, conversationID string, k int) ([]Turn, error)
}
