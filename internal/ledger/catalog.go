package ledger

import (
	"fmt"
	"time"
)

// CatalogNode is one category in the expense catalog tree. The tree is an
// arena of nodes addressed by id with parent-id edges; no native pointer
// cycles. Categories classify SHARED_COST lines only.
type CatalogNode struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog is an in-memory view of the category arena, used to enforce
// cycle-freedom at insert time.
type Catalog struct {
	nodes map[int64]CatalogNode
}

// NewCatalog builds the arena from persisted nodes, rejecting dangling
// parents and cycles (a corrupted tree should never load silently).
func NewCatalog(nodes []CatalogNode) (*Catalog, error) {
	c := &Catalog{nodes: make(map[int64]CatalogNode, len(nodes))}
	for _, n := range nodes {
		c.nodes[n.ID] = n
	}
	for _, n := range nodes {
		if n.ParentID != nil {
			if _, ok := c.nodes[*n.ParentID]; !ok {
				return nil, fmt.Errorf("%w: node %d references parent %d", ErrCatalogNotFound, n.ID, *n.ParentID)
			}
		}
		if c.onPathToRoot(n.ID, n.ID) {
			return nil, fmt.Errorf("%w: node %d", ErrCatalogCycle, n.ID)
		}
	}
	return c, nil
}

// Get returns the node by id.
func (c *Catalog) Get(id int64) (CatalogNode, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// WouldCycle reports whether re-parenting (or inserting) node id under
// parentID would create a cycle.
func (c *Catalog) WouldCycle(id, parentID int64) bool {
	if id == parentID {
		return true
	}
	return c.onPathToRoot(id, parentID)
}

// onPathToRoot walks parent edges from `from` and reports whether `target`
// appears strictly above it.
func (c *Catalog) onPathToRoot(target, from int64) bool {
	seen := make(map[int64]bool)
	cur, ok := c.nodes[from]
	for ok && cur.ParentID != nil {
		p := *cur.ParentID
		if p == target {
			return true
		}
		if seen[p] {
			return false // pre-existing loop elsewhere; caught by NewCatalog
		}
		seen[p] = true
		cur, ok = c.nodes[p]
	}
	return false
}

// Children returns the ids of the direct children of a node, in no
// particular order.
func (c *Catalog) Children(id int64) []int64 {
	var out []int64
	for _, n := range c.nodes {
		if n.ParentID != nil && *n.ParentID == id {
			out = append(out, n.ID)
		}
	}
	return out
}
