// Package tree implements the document tree: named nodes with content,
// addressed by stable IDs, persisted through a Store.
package tree

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a node ID does not resolve.
var ErrNotFound = errors.New("node not found")

// Node is a unit of the document tree with a title, parent link, and content.
type Node struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNode constructs a node with a fresh ID under the given parent.
func NewNode(parentID *uuid.UUID, title string) *Node {
	now := time.Now()
	return &Node{
		ID:        uuid.New(),
		ParentID:  parentID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
