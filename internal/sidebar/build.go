package sidebar

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/content"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/foundation/normalization"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Registry is the view of the content registry the resolver needs.
// *content.Registry implements it.
type Registry interface {
	Get(id string) (content.Document, error)
	ByPermalink(permalink string) (content.Document, error)
	All() iter.Seq[content.Document]
	PathFor(route string) string
}

// Build resolves an anonymous sidebar against reg. On failure no tree is
// returned.
func Build(items []*Item, reg Registry) (*Tree, error) {
	return newResolver(reg).tree("", items)
}

// resolver holds state shared by all sidebars of one build.
type resolver struct {
	reg  Registry
	seen map[string]string // doc id -> location of its first reference
}

func newResolver(reg Registry) *resolver {
	return &resolver{reg: reg, seen: make(map[string]string)}
}

type treeBuilder struct {
	*resolver
	name      string
	ancestors map[*Item]struct{}
	labels    []string
	order     []string
	entries   map[string]*entry
	navTitles map[string]string
	docs      map[string]content.Document
}

func (r *resolver) tree(name string, items []*Item) (*Tree, error) {
	b := &treeBuilder{
		resolver:  r,
		name:      name,
		ancestors: make(map[*Item]struct{}),
		entries:   make(map[string]*entry),
		navTitles: make(map[string]string),
		docs:      make(map[string]content.Document),
	}
	root := name
	if root == "" {
		root = "sidebar"
	}
	nodes, err := b.walk(items, root)
	if err != nil {
		return nil, err
	}
	if err := b.paginate(); err != nil {
		return nil, err
	}
	return &Tree{name: name, items: nodes, order: b.order, entries: b.entries}, nil
}

func (b *treeBuilder) walk(items []*Item, loc string) ([]Node, error) {
	nodes := make([]Node, 0, len(items))
	for i, it := range items {
		itemLoc := fmt.Sprintf("%s[%d]", loc, i)
		if it == nil {
			return nil, b.invalid("empty sidebar item", itemLoc)
		}
		if _, active := b.ancestors[it]; active {
			return nil, ferrors.StructureError("sidebar item contains itself").
				WithContext("sidebar", b.name).
				WithContext("path", itemLoc).
				WithContext("label", it.Label).
				WithCause(ErrCyclicSidebar).
				Build()
		}

		kind, ok := it.kind()
		if !ok {
			return nil, b.invalid(fmt.Sprintf("unknown item type %q", it.Type), itemLoc)
		}
		switch kind {
		case TypeAutogenerated:
			expanded, err := b.expand(it, itemLoc)
			if err != nil {
				return nil, err
			}
			children, err := b.walk(expanded, itemLoc)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, children...)
		case TypeCategory:
			cat, err := b.category(it, itemLoc)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, cat)
		default:
			link, err := b.link(it, itemLoc)
			if err != nil {
				return nil, err
			}
			if link != nil {
				nodes = append(nodes, link)
			}
		}
	}
	return nodes, nil
}

func (b *treeBuilder) category(it *Item, loc string) (*Category, error) {
	if strings.TrimSpace(it.Label) == "" {
		return nil, b.invalid("category without label", loc)
	}
	b.ancestors[it] = struct{}{}
	defer delete(b.ancestors, it)

	cat := &Category{
		Label:       it.Label,
		Collapsible: boolOr(it.Collapsible, true),
		Collapsed:   boolOr(it.Collapsed, true),
	}
	// The category's own page comes before its children in traversal order.
	if err := b.categoryPage(cat, it, loc); err != nil {
		return nil, err
	}

	b.labels = append(b.labels, it.Label)
	children, err := b.walk(it.Items, loc+"/"+it.Label)
	b.labels = b.labels[:len(b.labels)-1]
	if err != nil {
		return nil, err
	}
	cat.Items = children
	return cat, nil
}

func (b *treeBuilder) categoryPage(cat *Category, it *Item, loc string) error {
	var ref string
	if it.Link != nil {
		switch strings.ToLower(strings.TrimSpace(it.Link.Type)) {
		case LinkDoc:
			if ref = strings.TrimSpace(it.Link.ID); ref == "" {
				return b.invalid("category doc link without id", loc)
			}
		case LinkGeneratedIndex:
			b.generatedIndex(cat, it.Link.Slug)
			return nil
		default:
			return b.invalid(fmt.Sprintf("unknown category link type %q", it.Link.Type), loc)
		}
	} else {
		ref = it.ref()
	}
	if ref == "" {
		return nil
	}

	// Permalinks under <prefix>/category/ name generated index pages.
	if strings.HasPrefix(ref, "/") && strings.HasPrefix(ref, b.reg.PathFor("category")+"/") {
		if _, err := b.reg.ByPermalink(ref); err != nil {
			cat.GeneratedIndex = true
			cat.Permalink = ref
			return nil
		}
	}

	doc, err := b.resolve(ref, loc)
	if err != nil {
		return err
	}
	if doc.Unlisted {
		slog.Debug("Skipping unlisted category page", logfields.DocID(doc.ID), logfields.Sidebar(b.name))
		return nil
	}
	if err := b.visit(doc, cat.Label, loc); err != nil {
		return err
	}
	cat.Href = doc.ID
	cat.Permalink = doc.Permalink
	return nil
}

func (b *treeBuilder) generatedIndex(cat *Category, slug string) {
	route := strings.Trim(slug, "/")
	if route == "" {
		route = "category/" + normalization.Slugify(cat.Label)
	}
	cat.GeneratedIndex = true
	cat.Permalink = b.reg.PathFor(route)
}

func (b *treeBuilder) link(it *Item, loc string) (*Link, error) {
	ref := it.ref()
	if ref == "" {
		return nil, b.invalid("link without document reference", loc)
	}
	doc, err := b.resolve(ref, loc)
	if err != nil {
		return nil, err
	}
	if doc.Unlisted {
		slog.Debug("Skipping unlisted document", logfields.DocID(doc.ID), logfields.Sidebar(b.name))
		return nil, nil
	}
	label := strings.TrimSpace(it.Label)
	if label == "" {
		label = doc.NavLabel()
	}
	if err := b.visit(doc, label, loc); err != nil {
		return nil, err
	}
	return &Link{Label: label, DocumentID: doc.ID, Permalink: doc.Permalink}, nil
}

func (b *treeBuilder) resolve(ref, loc string) (content.Document, error) {
	var (
		doc content.Document
		err error
	)
	if strings.HasPrefix(ref, "/") {
		doc, err = b.reg.ByPermalink(ref)
	} else {
		doc, err = b.reg.Get(ref)
	}
	if err != nil {
		return content.Document{}, ferrors.ReferenceError("sidebar references unknown document").
			WithContext("doc_id", ref).
			WithContext("sidebar", b.name).
			WithContext("path", loc).
			WithCause(ErrDanglingReference).
			Build()
	}
	return doc, nil
}

func (b *treeBuilder) visit(doc content.Document, navTitle, loc string) error {
	if first, dup := b.seen[doc.ID]; dup {
		return ferrors.StructureError("document listed more than once").
			WithContext("doc_id", doc.ID).
			WithContext("sidebar", b.name).
			WithContext("path", loc).
			WithContext("first_path", first).
			WithCause(ErrDuplicateReference).
			Build()
	}
	b.seen[doc.ID] = loc
	b.entries[doc.ID] = &entry{index: len(b.order), path: slices.Clone(b.labels)}
	b.order = append(b.order, doc.ID)
	b.navTitles[doc.ID] = navTitle
	b.docs[doc.ID] = doc
	return nil
}

// paginate assigns neighbors by adjacency, then applies per-document overrides.
func (b *treeBuilder) paginate() error {
	for i, id := range b.order {
		e := b.entries[id]
		if i > 0 {
			e.neighbors.Previous = b.navLink(b.docs[b.order[i-1]])
		}
		if i < len(b.order)-1 {
			e.neighbors.Next = b.navLink(b.docs[b.order[i+1]])
		}

		doc := b.docs[id]
		if doc.PaginationPrev != nil {
			nl, err := b.override(id, "pagination_prev", *doc.PaginationPrev)
			if err != nil {
				return err
			}
			e.neighbors.Previous = nl
		}
		if doc.PaginationNext != nil {
			nl, err := b.override(id, "pagination_next", *doc.PaginationNext)
			if err != nil {
				return err
			}
			e.neighbors.Next = nl
		}
	}
	return nil
}

func (b *treeBuilder) override(id, field, ref string) (*NavLink, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	target, err := b.reg.Get(ref)
	if err != nil {
		return nil, ferrors.ReferenceError("pagination override references unknown document").
			WithContext("doc_id", ref).
			WithContext("source_doc_id", id).
			WithContext("field", field).
			WithCause(ErrDanglingReference).
			Build()
	}
	return b.navLink(target), nil
}

func (b *treeBuilder) navLink(doc content.Document) *NavLink {
	title, ok := b.navTitles[doc.ID]
	if !ok {
		title = doc.NavLabel()
	}
	return &NavLink{DocumentID: doc.ID, Title: title, Permalink: doc.Permalink}
}

func (b *treeBuilder) invalid(problem, loc string) error {
	return ferrors.ValidationError(problem).
		WithContext("sidebar", b.name).
		WithContext("path", loc).
		WithCause(ErrInvalidSidebar).
		Build()
}
