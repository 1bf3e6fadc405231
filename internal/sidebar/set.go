package sidebar

import (
	"iter"
	"strings"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// DefaultName names the sidebar of a specification that declares a single
// unnamed sidebar.
const DefaultName = "docs"

// Named is one declared sidebar.
type Named struct {
	Name  string
	Items []*Item
}

// Spec is a sidebar specification: named sidebars in declaration order.
type Spec struct {
	Sidebars []Named
}

// Set is the resolved form of a Spec. Each document belongs to at most one
// sidebar; prev/next never crosses sidebars.
type Set struct {
	names []string
	trees map[string]*Tree
	owner map[string]string
}

// BuildSet resolves every sidebar of spec against reg. A document listed in
// two sidebars is a duplicate reference. On failure no set is returned.
func BuildSet(spec *Spec, reg Registry) (*Set, error) {
	if spec == nil {
		spec = &Spec{}
	}
	r := newResolver(reg)
	s := &Set{
		trees: make(map[string]*Tree, len(spec.Sidebars)),
		owner: make(map[string]string),
	}
	for i, sb := range spec.Sidebars {
		name := strings.TrimSpace(sb.Name)
		if name == "" {
			return nil, ferrors.ValidationError("sidebar without name").
				WithContext("index", i).
				WithCause(ErrInvalidSidebar).
				Build()
		}
		if _, dup := s.trees[name]; dup {
			return nil, ferrors.ValidationError("sidebar declared twice").
				WithContext("sidebar", name).
				WithCause(ErrInvalidSidebar).
				Build()
		}
		t, err := r.tree(name, sb.Items)
		if err != nil {
			return nil, err
		}
		s.names = append(s.names, name)
		s.trees[name] = t
		for _, id := range t.order {
			s.owner[id] = name
		}
	}
	return s, nil
}

// Names returns the sidebar names in declaration order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Tree returns the named sidebar.
func (s *Set) Tree(name string) (*Tree, error) {
	t, ok := s.trees[name]
	if !ok {
		return nil, ferrors.NotFoundError("sidebar not found").
			WithContext("sidebar", name).
			Build()
	}
	return t, nil
}

// Trees yields the sidebars in declaration order.
func (s *Set) Trees() iter.Seq[*Tree] {
	return func(yield func(*Tree) bool) {
		for _, name := range s.names {
			if !yield(s.trees[name]) {
				return
			}
		}
	}
}

// SidebarOf returns the name of the sidebar listing id.
func (s *Set) SidebarOf(id string) (string, bool) {
	name, ok := s.owner[id]
	return name, ok
}

// Len returns the number of documents reachable from any sidebar.
func (s *Set) Len() int { return len(s.owner) }

// NeighborsOf returns the previous and next documents of id within its sidebar.
func (s *Set) NeighborsOf(id string) (Neighbors, error) {
	name, ok := s.owner[id]
	if !ok {
		return Neighbors{}, unlisted(id, "")
	}
	return s.trees[name].NeighborsOf(id)
}

// PathOf returns the breadcrumb labels of id within its sidebar.
func (s *Set) PathOf(id string) ([]string, error) {
	name, ok := s.owner[id]
	if !ok {
		return nil, unlisted(id, "")
	}
	return s.trees[name].PathOf(id)
}
