package sidebar

import "encoding/json"

// Node is a resolved sidebar node: *Link or *Category.
type Node interface {
	NodeLabel() string
	isNode()
}

// Link is a leaf pointing at a registered document.
type Link struct {
	Label      string
	DocumentID string
	Permalink  string
}

// Category groups nodes and may have a page of its own. Href is the id of its
// landing document, if any; Permalink is that document's URL or the URL of a
// generated index page.
type Category struct {
	Label          string
	Collapsible    bool
	Collapsed      bool
	Items          []Node
	Href           string
	Permalink      string
	GeneratedIndex bool
}

func (l *Link) NodeLabel() string     { return l.Label }
func (c *Category) NodeLabel() string { return c.Label }
func (*Link) isNode()                 {}
func (*Category) isNode()             {}

// MarshalJSON renders the link in the shape sidebar consumers expect.
func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Label string `json:"label"`
		Href  string `json:"href"`
		DocID string `json:"docId"`
	}{"link", l.Label, l.Permalink, l.DocumentID})
}

// MarshalJSON renders the category with its resolved children.
func (c *Category) MarshalJSON() ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []Node{}
	}
	return json.Marshal(struct {
		Type        string `json:"type"`
		Label       string `json:"label"`
		Collapsible bool   `json:"collapsible"`
		Collapsed   bool   `json:"collapsed"`
		Items       []Node `json:"items"`
		Href        string `json:"href,omitempty"`
		DocID       string `json:"docId,omitempty"`
	}{"category", c.Label, c.Collapsible, c.Collapsed, items, c.Permalink, c.Href})
}
