package tree

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for the document tree. Implementations
// own their locking; callers may read concurrently with editing.
type Store interface {
	GetNode(ctx context.Context, id uuid.UUID) (*Node, error)
	CreateNode(ctx context.Context, parentID *uuid.UUID, title string) (*Node, error)
	UpdateNode(ctx context.Context, id uuid.UUID, content string) error
	DeleteNode(ctx context.Context, id uuid.UUID) (bool, error)
	Children(ctx context.Context, parentID *uuid.UUID) ([]*Node, error)
}

// MemoryStore is an in-memory Store, used for tests and as the working set
// for a freshly created document.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*Node
	// insertion order per parent, so Children is deterministic
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory tree.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[uuid.UUID]*Node)}
}

func (s *MemoryStore) GetNode(ctx context.Context, id uuid.UUID) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *node
	return &cp, nil
}

func (s *MemoryStore) CreateNode(ctx context.Context, parentID *uuid.UUID, title string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != nil {
		if _, ok := s.nodes[*parentID]; !ok {
			return nil, ErrNotFound
		}
	}

	node := NewNode(parentID, title)
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)

	cp := *node
	return &cp, nil
}

func (s *MemoryStore) UpdateNode(ctx context.Context, id uuid.UUID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return ErrNotFound
	}
	node.Content = content
	node.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteNode(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return false, nil
	}
	s.deleteSubtree(id)
	return true, nil
}

// deleteSubtree removes a node and all descendants. Caller holds the lock.
func (s *MemoryStore) deleteSubtree(id uuid.UUID) {
	for _, node := range s.nodes {
		if node.ParentID != nil && *node.ParentID == id {
			s.deleteSubtree(node.ID)
		}
	}
	delete(s.nodes, id)
}

func (s *MemoryStore) Children(ctx context.Context, parentID *uuid.UUID) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*Node
	for _, id := range s.order {
		node, ok := s.nodes[id]
		if !ok {
			continue
		}
		if sameParent(node.ParentID, parentID) {
			cp := *node
			children = append(children, &cp)
		}
	}
	return children, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var _ Store = (*MemoryStore)(nil)
