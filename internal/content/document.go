package content

import "time"

// Heading is one table-of-contents entry of a document.
type Heading struct {
	Value string `json:"value"`
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Descriptor is the authoring-time metadata of a document, as produced by
// discovery. Slug may be empty, in which case it is derived from ID.
type Descriptor struct {
	ID              string
	Title           string
	Description     string
	Slug            string
	SidebarPosition *int
	SidebarLabel    string
	Source          string
	SourceDirName   string
	EditURL         string
	Draft           bool
	Unlisted        bool
	Tags            []string
	TOC             []Heading
	Fingerprint     string
	LastUpdatedAt   time.Time
	LastUpdatedBy   string
	FrontMatter     map[string]any

	// PaginationPrev and PaginationNext override the neighbors derived from
	// the sidebar. nil keeps the derived neighbor; a pointer to "" removes it.
	PaginationPrev *string
	PaginationNext *string
}

// Document is a registered document. Slices and maps are owned by the
// registry and must be treated as read-only.
type Document struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Slug            string         `json:"slug"`
	Permalink       string         `json:"permalink"`
	SidebarPosition *int           `json:"sidebarPosition,omitempty"`
	SidebarLabel    string         `json:"sidebarLabel,omitempty"`
	Source          string         `json:"source,omitempty"`
	SourceDirName   string         `json:"sourceDirName"`
	EditURL         string         `json:"editUrl,omitempty"`
	Draft           bool           `json:"draft"`
	Unlisted        bool           `json:"unlisted"`
	Tags            []string       `json:"tags"`
	TOC             []Heading      `json:"toc,omitempty"`
	Fingerprint     string         `json:"fingerprint,omitempty"`
	LastUpdatedAt   *time.Time     `json:"lastUpdatedAt,omitempty"`
	LastUpdatedBy   string         `json:"lastUpdatedBy,omitempty"`
	FrontMatter     map[string]any `json:"frontMatter"`
	PaginationPrev  *string        `json:"-"`
	PaginationNext  *string        `json:"-"`

	// ExplicitSlug is set when the author chose the slug in frontmatter.
	ExplicitSlug bool `json:"-"`
}

// NavLabel is the label a sidebar shows for the document when the sidebar
// item does not set one.
func (d Document) NavLabel() string {
	if d.SidebarLabel != "" {
		return d.SidebarLabel
	}
	return d.Title
}
