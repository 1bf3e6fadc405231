package sidebar

import (
	"cmp"
	"log/slog"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// autoEntry is a candidate item of a generated listing. decl is the
// registry position of its first document and breaks position ties.
type autoEntry struct {
	item     *Item
	position *int
	decl     int
}

// expand replaces an autogenerated item with items for every registered
// document under its directory. Subdirectories become categories, and an
// "index" document in a subdirectory becomes that category's page.
func (b *treeBuilder) expand(it *Item, loc string) ([]*Item, error) {
	dir := strings.TrimSpace(it.DirName)
	if dir == "" {
		return nil, b.invalid("autogenerated item without dirName", loc)
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" {
		dir = "."
	}

	var docs []content.Document
	for doc := range b.reg.All() {
		if _, ok := relativeTo(dir, doc.ID); ok {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		slog.Debug("Autogenerated sidebar item matched no documents",
			logfields.Sidebar(b.name), logfields.Path(dir))
	}
	items, _ := autogenerate(dir, docs, false)
	return items, nil
}

// autogenerate builds the listing for dir. When nested is set an "index"
// document at this level is returned separately as the category page.
func autogenerate(dir string, docs []content.Document, nested bool) (items []*Item, index *content.Document) {
	var entries []*autoEntry
	subdirs := make(map[string]*autoEntry)
	grouped := make(map[string][]content.Document)
	var subOrder []string

	for i, doc := range docs {
		rel, _ := relativeTo(dir, doc.ID)
		head, _, isNested := strings.Cut(rel, "/")
		if !isNested {
			if nested && rel == "index" && index == nil {
				d := doc
				index = &d
				continue
			}
			entries = append(entries, &autoEntry{item: Doc(doc.ID), position: doc.SidebarPosition, decl: i})
			continue
		}
		e, ok := subdirs[head]
		if !ok {
			e = &autoEntry{decl: i}
			subdirs[head] = e
			subOrder = append(subOrder, head)
			entries = append(entries, e)
		}
		e.position = minPosition(e.position, doc.SidebarPosition)
		grouped[head] = append(grouped[head], doc)
	}

	for _, head := range subOrder {
		sub := head
		if dir != "." {
			sub = dir + "/" + head
		}
		children, page := autogenerate(sub, grouped[head], true)
		cat := NewCategory(humanize(head), children...)
		if page != nil {
			cat.Link = &CategoryLink{Type: LinkDoc, ID: page.ID}
		}
		subdirs[head].item = cat
	}

	slices.SortStableFunc(entries, func(a, b *autoEntry) int {
		switch {
		case a.position == nil && b.position == nil:
			return cmp.Compare(a.decl, b.decl)
		case a.position == nil:
			return 1
		case b.position == nil:
			return -1
		}
		if c := cmp.Compare(*a.position, *b.position); c != 0 {
			return c
		}
		return cmp.Compare(a.decl, b.decl)
	})

	items = make([]*Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.item)
	}
	return items, index
}

func relativeTo(dir, id string) (string, bool) {
	if dir == "." {
		return id, true
	}
	rel, ok := strings.CutPrefix(id, dir+"/")
	return rel, ok && rel != ""
}

func minPosition(cur, p *int) *int {
	if p == nil {
		return cur
	}
	if cur == nil || *p < *cur {
		v := *p
		return &v
	}
	return cur
}

// humanize turns a directory name into a category label.
func humanize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.Und).String(name)
}
