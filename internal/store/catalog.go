package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/divvyhq/divvy/internal/ledger"
)

// CreateCatalog inserts a category node. Parent references are checked
// against the loaded arena so the tree stays cycle-free; a fresh node cannot
// itself close a cycle, but a dangling parent is rejected here rather than
// by the foreign key so the error is typed.
func (s *Store) CreateCatalog(ctx context.Context, name string, parentID *int64) (*ledger.CatalogNode, error) {
	if name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}

	if parentID != nil {
		nodes, err := s.ListCatalog(ctx)
		if err != nil {
			return nil, err
		}
		tree, err := ledger.NewCatalog(nodes)
		if err != nil {
			return nil, err
		}
		if _, ok := tree.Get(*parentID); !ok {
			return nil, fmt.Errorf("%w: parent %d", ledger.ErrCatalogNotFound, *parentID)
		}
	}

	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO expense_catalog (name, parent_id) VALUES (?, ?)`, name, parentID)
	if err != nil {
		return nil, fmt.Errorf("insert catalog: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("catalog id: %w", err)
	}
	return s.GetCatalog(ctx, id)
}

// ReparentCatalog moves a category under a new parent, or to the root when
// parentID is nil. The loaded arena decides whether the move would close a
// cycle; moving a node under its own descendant is rejected.
func (s *Store) ReparentCatalog(ctx context.Context, id int64, parentID *int64) (*ledger.CatalogNode, error) {
	nodes, err := s.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := ledger.NewCatalog(nodes)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Get(id); !ok {
		return nil, fmt.Errorf("%w: %d", ledger.ErrCatalogNotFound, id)
	}
	if parentID != nil {
		if _, ok := tree.Get(*parentID); !ok {
			return nil, fmt.Errorf("%w: parent %d", ledger.ErrCatalogNotFound, *parentID)
		}
		if tree.WouldCycle(id, *parentID) {
			return nil, fmt.Errorf("%w: %d under %d", ledger.ErrCatalogCycle, id, *parentID)
		}
	}

	if _, err := s.writer.ExecContext(ctx,
		`UPDATE expense_catalog SET parent_id = ? WHERE id = ?`, parentID, id); err != nil {
		return nil, fmt.Errorf("reparent catalog: %w", err)
	}
	return s.GetCatalog(ctx, id)
}

func (s *Store) GetCatalog(ctx context.Context, id int64) (*ledger.CatalogNode, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, name, parent_id, created_at FROM expense_catalog WHERE id = ?`, id)
	return scanCatalog(row)
}

// FindCatalog looks a node up by name under a given parent (nil for roots).
// Used by the seed loader to stay idempotent.
func (s *Store) FindCatalog(ctx context.Context, name string, parentID *int64) (*ledger.CatalogNode, error) {
	var row *sql.Row
	if parentID == nil {
		row = s.reader.QueryRowContext(ctx,
			`SELECT id, name, parent_id, created_at FROM expense_catalog WHERE name = ? AND parent_id IS NULL`, name)
	} else {
		row = s.reader.QueryRowContext(ctx,
			`SELECT id, name, parent_id, created_at FROM expense_catalog WHERE name = ? AND parent_id = ?`, name, *parentID)
	}
	return scanCatalog(row)
}

func (s *Store) ListCatalog(ctx context.Context) ([]ledger.CatalogNode, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, name, parent_id, created_at FROM expense_catalog ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var nodes []ledger.CatalogNode
	for rows.Next() {
		var n ledger.CatalogNode
		var parent sql.NullInt64
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Name, &parent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		if parent.Valid {
			p := parent.Int64
			n.ParentID = &p
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func scanCatalog(row *sql.Row) (*ledger.CatalogNode, error) {
	var n ledger.CatalogNode
	var parent sql.NullInt64
	var createdAt string
	err := row.Scan(&n.ID, &n.Name, &parent, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrCatalogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	if parent.Valid {
		p := parent.Int64
		n.ParentID = &p
	}
	n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &n, nil
}
