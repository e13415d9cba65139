package convoports

import "github.com/google/uuid"

// Context is the transient snapshot sent to the assistant, rebuilt each turn
// and discarded at its end.
type Context struct {
	CurrentNodeID      *uuid.UUID
	CurrentNodeSummary string
	LastCommand        *Command
	RecentHistory      []Turn
}
