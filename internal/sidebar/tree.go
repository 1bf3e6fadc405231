package sidebar

import (
	"slices"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// NavLink points at a neighboring document.
type NavLink struct {
	DocumentID string `json:"docId"`
	Title      string `json:"title"`
	Permalink  string `json:"permalink"`
}

// Neighbors is the previous/next pair of a document. Either side may be nil.
type Neighbors struct {
	Previous *NavLink `json:"previous,omitempty"`
	Next     *NavLink `json:"next,omitempty"`
}

type entry struct {
	index     int
	path      []string
	neighbors Neighbors
}

// Tree is a resolved sidebar. It is immutable and safe for concurrent reads.
type Tree struct {
	name    string
	items   []Node
	order   []string
	entries map[string]*entry
}

// Name returns the sidebar name, empty for anonymous sidebars.
func (t *Tree) Name() string { return t.name }

// Items returns the top-level nodes.
func (t *Tree) Items() []Node { return t.items }

// Documents returns the flattened pre-order document sequence.
func (t *Tree) Documents() []string { return slices.Clone(t.order) }

// Len returns the number of documents reachable from the tree.
func (t *Tree) Len() int { return len(t.order) }

// Contains reports whether id is reachable from the tree.
func (t *Tree) Contains(id string) bool {
	_, ok := t.entries[id]
	return ok
}

// NeighborsOf returns the previous and next documents of id.
func (t *Tree) NeighborsOf(id string) (Neighbors, error) {
	e, ok := t.entries[id]
	if !ok {
		return Neighbors{}, unlisted(id, t.name)
	}
	return e.neighbors, nil
}

// PathOf returns the labels of the categories enclosing id, root first.
// Top-level documents have an empty path.
func (t *Tree) PathOf(id string) ([]string, error) {
	e, ok := t.entries[id]
	if !ok {
		return nil, unlisted(id, t.name)
	}
	return slices.Clone(e.path), nil
}

// Walk visits nodes depth-first in declared order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			if !fn(n, depth) {
				continue
			}
			if c, ok := n.(*Category); ok {
				walk(c.Items, depth+1)
			}
		}
	}
	walk(t.items, 0)
}

func unlisted(id, sidebarName string) error {
	b := ferrors.NotFoundError("document is not in the sidebar").
		WithContext("doc_id", id).
		WithCause(ErrUnlisted)
	if sidebarName != "" {
		b = b.WithContext("sidebar", sidebarName)
	}
	return b.Build()
}
