package convoports

import "time"

// Role tags a conversation turn with its speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn represents a single recorded conversational exchange.
// Immutable once recorded; ordering is by Seq (assignment order), not wall clock.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}
