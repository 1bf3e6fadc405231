package site

import (
	"errors"
	"iter"
	"time"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
)

// Snapshot is one consistent build: a sealed registry and the sidebars
// resolved against it. It is never modified after it is published.
type Snapshot struct {
	BuildID     string
	Generation  uint64
	BuiltAt     time.Time
	Fingerprint string
	Registry    *content.Registry
	Sidebars    *sidebar.Set
}

// PageLink is the previous/next link of a document page.
type PageLink struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// DocMetadata is everything a page renderer needs about one document.
type DocMetadata struct {
	content.Document
	Version    string    `json:"version"`
	Sidebar    string    `json:"sidebar,omitempty"`
	Previous   *PageLink `json:"previous,omitempty"`
	Next       *PageLink `json:"next,omitempty"`
	Breadcrumb []string  `json:"breadcrumb"`
}

// DocSummary is a document entry of VersionMetadata.
type DocSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Sidebar     string `json:"sidebar,omitempty"`
}

// VersionMetadata summarizes the whole docs version: every sidebar tree and
// every document.
type VersionMetadata struct {
	PluginID     string                    `json:"pluginId"`
	Version      string                    `json:"version"`
	Label        string                    `json:"label"`
	IsLast       bool                      `json:"isLast"`
	SidebarNames []string                  `json:"sidebarNames"`
	DocsSidebars map[string][]sidebar.Node `json:"docsSidebars"`
	Docs         map[string]DocSummary     `json:"docs"`
}

// CurrentVersion names the only docs version.
const CurrentVersion = "current"

// Get returns the document registered under id.
func (s *Snapshot) Get(id string) (content.Document, error) {
	return s.Registry.Get(id)
}

// NeighborsOf returns the previous and next documents of id. It reports
// content.ErrNotFound for unknown ids and for documents in no sidebar.
func (s *Snapshot) NeighborsOf(id string) (sidebar.Neighbors, error) {
	if _, err := s.Registry.Get(id); err != nil {
		return sidebar.Neighbors{}, err
	}
	return s.Sidebars.NeighborsOf(id)
}

// PathOf returns the breadcrumb labels of id.
func (s *Snapshot) PathOf(id string) ([]string, error) {
	if _, err := s.Registry.Get(id); err != nil {
		return nil, err
	}
	return s.Sidebars.PathOf(id)
}

// All yields every document in registration order.
func (s *Snapshot) All() iter.Seq[content.Document] {
	return s.Registry.All()
}

// Metadata returns the page metadata of id. Documents outside every sidebar
// have no sidebar, neighbors or breadcrumb.
func (s *Snapshot) Metadata(id string) (DocMetadata, error) {
	doc, err := s.Registry.Get(id)
	if err != nil {
		return DocMetadata{}, err
	}
	md := DocMetadata{Document: doc, Version: CurrentVersion, Breadcrumb: []string{}}
	name, ok := s.Sidebars.SidebarOf(id)
	if !ok {
		return md, nil
	}
	md.Sidebar = name

	nb, err := s.Sidebars.NeighborsOf(id)
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		return DocMetadata{}, err
	}
	md.Previous = pageLink(nb.Previous)
	md.Next = pageLink(nb.Next)

	if path, err := s.Sidebars.PathOf(id); err == nil {
		md.Breadcrumb = path
	}
	return md, nil
}

func pageLink(l *sidebar.NavLink) *PageLink {
	if l == nil {
		return nil
	}
	return &PageLink{Title: l.Title, Permalink: l.Permalink}
}

// Version returns the summary of every sidebar and document.
func (s *Snapshot) Version() VersionMetadata {
	v := VersionMetadata{
		PluginID:     "default",
		Version:      CurrentVersion,
		Label:        "Next",
		IsLast:       true,
		SidebarNames: s.Sidebars.Names(),
		DocsSidebars: make(map[string][]sidebar.Node),
		Docs:         make(map[string]DocSummary, s.Registry.Len()),
	}
	for t := range s.Sidebars.Trees() {
		items := t.Items()
		if items == nil {
			items = []sidebar.Node{}
		}
		v.DocsSidebars[t.Name()] = items
	}
	for doc := range s.Registry.All() {
		if doc.Unlisted {
			continue
		}
		name, _ := s.Sidebars.SidebarOf(doc.ID)
		v.Docs[doc.ID] = DocSummary{ID: doc.ID, Title: doc.Title, Description: doc.Description, Sidebar: name}
	}
	return v
}
