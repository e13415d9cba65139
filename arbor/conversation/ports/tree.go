package convoports

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborhq/arbor/arbor/tree"
)

// TreeStore is the document-tree collaborator the dispatcher mutates through.
// Locking of the tree itself is the store's responsibility.
type TreeStore interface {
	GetNode(ctx context.Context, id uuid.UUID) (*tree.Node, error)
	CreateNode(ctx context.Context, parentID *uuid.UUID, title string) (*tree.Node, error)
	UpdateNode(ctx context.Context, id uuid.UUID, content string) error
	DeleteNode(ctx context.Context, id uuid.UUID) (bool, error)
	NodeSummary(ctx context.Context, id uuid.UUID) (string, error)
}

// NodeCursor is the injected accessor for the externally-owned "current node"
// reference. The orchestrator reads it at context-assembly time; the
// dispatcher moves it as commands execute. Never a process-wide singleton.
type NodeCursor interface {
	Current() (uuid.UUID, bool)
	Set(id uuid.UUID)
	Clear()
}
