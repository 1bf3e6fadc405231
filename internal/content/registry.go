package content

import (
	"iter"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Options controls how permalinks are computed.
type Options struct {
	// BasePath is the site base path, e.g. "/parallel-programming-essentials/".
	BasePath string
	// RoutePrefix is the docs route below the base path, e.g. "docs".
	RoutePrefix string
}

// Registry maps document ids to documents, preserving registration order.
type Registry struct {
	opts        Options
	docs        []Document
	byID        map[string]int
	byPermalink map[string]string
	sealed      bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:        opts,
		byID:        make(map[string]int),
		byPermalink: make(map[string]string),
	}
}

// Register validates desc, derives its slug and permalink and stores it.
func (r *Registry) Register(desc Descriptor) (Document, error) {
	if r.sealed {
		return Document{}, ferrors.InternalError("register after seal").
			WithContext("doc_id", desc.ID).
			WithCause(ErrSealed).
			Build()
	}
	if err := validate(desc); err != nil {
		return Document{}, err
	}
	if _, exists := r.byID[desc.ID]; exists {
		return Document{}, ferrors.AlreadyExistsError("document id registered twice").
			WithContext("doc_id", desc.ID).
			WithContext("source", desc.Source).
			WithCause(ErrDuplicateID).
			Build()
	}

	doc := newDocument(desc)
	doc.Permalink = r.permalink(doc.Slug)
	if owner, taken := r.byPermalink[doc.Permalink]; taken {
		return Document{}, ferrors.AlreadyExistsError("two documents share a permalink").
			WithContext("doc_id", desc.ID).
			WithContext("other_doc_id", owner).
			WithContext("permalink", doc.Permalink).
			WithCause(ErrDuplicatePermalink).
			Build()
	}
	if doc.Description == "" {
		slog.Debug("Document has no description", logfields.DocID(doc.ID))
	}

	r.byID[doc.ID] = len(r.docs)
	r.byPermalink[doc.Permalink] = doc.ID
	r.docs = append(r.docs, doc)
	return doc, nil
}

// Seal makes the registry read-only. Further Register calls fail with ErrSealed.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool { return r.sealed }

// Get returns the document with the given id.
func (r *Registry) Get(id string) (Document, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Document{}, notFound(id)
	}
	return r.docs[idx], nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// ByPermalink returns the document served at permalink.
func (r *Registry) ByPermalink(permalink string) (Document, error) {
	id, ok := r.byPermalink[permalink]
	if !ok {
		return Document{}, ferrors.NotFoundError("no document at permalink").
			WithContext("permalink", permalink).
			WithCause(ErrNotFound).
			Build()
	}
	return r.Get(id)
}

// All yields documents in registration order. The sequence can be iterated
// any number of times.
func (r *Registry) All() iter.Seq[Document] {
	return func(yield func(Document) bool) {
		for _, doc := range r.docs {
			if !yield(doc) {
				return
			}
		}
	}
}

// Len returns the number of registered documents.
func (r *Registry) Len() int { return len(r.docs) }

// Index returns the registration position of id, or -1.
func (r *Registry) Index(id string) int {
	if idx, ok := r.byID[id]; ok {
		return idx
	}
	return -1
}

// Permalink computes the permalink for a slug under this registry's options.
func (r *Registry) permalink(slug string) string {
	return path.Join("/", r.opts.BasePath, r.opts.RoutePrefix, slug)
}

// PathFor returns the site path of an arbitrary route below the docs prefix,
// e.g. PathFor("category/sycl-quickstart").
func (r *Registry) PathFor(route string) string {
	return r.permalink(route)
}

func notFound(id string) error {
	return ferrors.NotFoundError("document not found").
		WithContext("doc_id", id).
		WithCause(ErrNotFound).
		Build()
}

func validate(desc Descriptor) error {
	var problem string
	switch {
	case strings.TrimSpace(desc.ID) == "":
		problem = "document id is empty"
	case strings.HasPrefix(desc.ID, "/") || strings.HasSuffix(desc.ID, "/"):
		problem = "document id must not start or end with '/'"
	case path.Clean(desc.ID) != desc.ID:
		problem = "document id is not a clean path"
	case strings.TrimSpace(desc.Title) == "":
		problem = "document title is empty"
	default:
		return nil
	}
	return ferrors.ValidationError(problem).
		WithContext("doc_id", desc.ID).
		WithContext("source", desc.Source).
		WithCause(ErrInvalidDocument).
		Build()
}

func newDocument(desc Descriptor) Document {
	doc := Document{
		ID:              desc.ID,
		Title:           strings.TrimSpace(desc.Title),
		Description:     strings.TrimSpace(desc.Description),
		SidebarPosition: desc.SidebarPosition,
		SidebarLabel:    desc.SidebarLabel,
		Source:          desc.Source,
		SourceDirName:   desc.SourceDirName,
		EditURL:         desc.EditURL,
		Draft:           desc.Draft,
		Unlisted:        desc.Unlisted,
		Tags:            slices.Clone(desc.Tags),
		TOC:             slices.Clone(desc.TOC),
		Fingerprint:     desc.Fingerprint,
		LastUpdatedBy:   desc.LastUpdatedBy,
		FrontMatter:     maps.Clone(desc.FrontMatter),
		PaginationPrev:  desc.PaginationPrev,
		PaginationNext:  desc.PaginationNext,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.FrontMatter == nil {
		doc.FrontMatter = map[string]any{}
	}
	if doc.SourceDirName == "" {
		doc.SourceDirName = dirOf(desc.ID)
	}
	if !desc.LastUpdatedAt.IsZero() {
		at := desc.LastUpdatedAt.UTC()
		doc.LastUpdatedAt = &at
	}
	doc.Slug, doc.ExplicitSlug = DeriveSlug(desc.ID, desc.Slug)
	return doc
}

// DeriveSlug returns the URL slug for a document id. An explicit slug starting
// with '/' is absolute; otherwise it is resolved against the id's directory.
// Without an explicit slug the id itself is used, with a trailing "index"
// segment mapping to its directory.
func DeriveSlug(id, explicit string) (slug string, isExplicit bool) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		if strings.HasPrefix(explicit, "/") {
			return path.Clean(explicit), true
		}
		return path.Join("/", dirOf(id), explicit), true
	}
	if path.Base(id) == "index" {
		return path.Join("/", dirOf(id)), false
	}
	return "/" + id, false
}

func dirOf(id string) string {
	dir := path.Dir(id)
	if dir == "." {
		return "."
	}
	return dir
}
