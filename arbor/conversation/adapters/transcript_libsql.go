package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// LibSQLTranscriptStore persists conversation turns in the embedded libsql
// database. Writes sit off the turn's critical path; callers log failures and
// carry on.
type LibSQLTranscriptStore struct {
	db *sql.DB
}

// NewLibSQLTranscriptStore creates a transcript store over an open database.
func NewLibSQLTranscriptStore(db *sql.DB) *LibSQLTranscriptStore {
	return &LibSQLTranscriptStore{db: db}
}

// SaveTurn writes one turn, keyed by conversation ID and ledger sequence.
func (s *LibSQLTranscriptStore) SaveTurn(ctx context.Context, conversationID string, turn ports.Turn) error {
	turnJSON, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transcript_turns (conversation_id, seq, turn_data, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, turn.Seq, string(turnJSON), turn.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}

	return nil
}

// LoadRecent loads the last k turns for a conversation in original order.
func (s *LibSQLTranscriptStore) LoadRecent(ctx context.Context, conversationID string, k int) ([]ports.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_data FROM transcript_turns WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?`,
		conversationID, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []ports.Turn
	for rows.Next() {
		var turnJSON string
		if err := rows.Scan(&turnJSON); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		var turn ports.Turn
		if err := json.Unmarshal([]byte(turnJSON), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	// Reverse to chronological order (oldest first)
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

var _ ports.TranscriptStore = (*LibSQLTranscriptStore)(nil)
