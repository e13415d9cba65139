package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LibSQLStore persists the document tree in an embedded libsql database.
// Child rows cascade on delete via the schema's foreign key.
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore creates a tree store over an open database. The schema is
// expected to be migrated already (db.Migrate).
func NewLibSQLStore(db *sql.DB) *LibSQLStore {
	return &LibSQLStore{db: db}
}

func (s *LibSQLStore) GetNode(ctx context.Context, id uuid.UUID) (*Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, title, content, created_at, updated_at FROM nodes WHERE id = ?`, id.String())

	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load node: %w", err)
	}
	return node, nil
}

func (s *LibSQLStore) CreateNode(ctx context.Context, parentID *uuid.UUID, title string) (*Node, error) {
	node := NewNode(parentID, title)

	var parent any
	if parentID != nil {
		parent = parentID.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, parent_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		node.ID.String(), parent, node.Title, node.Content, node.CreatedAt, node.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	return node, nil
}

func (s *LibSQLStore) UpdateNode(ctx context.Context, id uuid.UUID, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LibSQLStore) DeleteNode(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete node: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete node: %w", err)
	}
	return affected > 0, nil
}

func (s *LibSQLStore) Children(ctx context.Context, parentID *uuid.UUID) ([]*Node, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, parent_id, title, content, created_at, updated_at FROM nodes WHERE parent_id IS NULL ORDER BY created_at, id`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, parent_id, title, content, created_at, updated_at FROM nodes WHERE parent_id = ? ORDER BY created_at, id`,
			parentID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []*Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		children = append(children, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating children: %w", err)
	}
	return children, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var (
		node      Node
		idStr     string
		parentStr sql.NullString
	)
	if err := row.Scan(&idStr, &parentStr, &node.Title, &node.Content, &node.CreatedAt, &node.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid node id %q: %w", idStr, err)
	}
	node.ID = id

	if parentStr.Valid {
		parent, err := uuid.Parse(parentStr.String)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id %q: %w", parentStr.String, err)
		}
		node.ParentID = &parent
	}

	return &node, nil
}

var _ Store = (*LibSQLStore)(nil)
