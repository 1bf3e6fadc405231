package sidebar

import (
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/foundation/normalization"
)

// ItemType tags a sidebar specification item.
type ItemType string

const (
	TypeCategory      ItemType = "category"
	TypeLink          ItemType = "link"
	TypeDoc           ItemType = "doc"
	TypeAutogenerated ItemType = "autogenerated"
)

var itemTypeNormalizer = normalization.NewNormalizer(map[string]ItemType{
	"category":      TypeCategory,
	"link":          TypeLink,
	"doc":           TypeDoc,
	"autogenerated": TypeAutogenerated,
}, "")

// Category link types.
const (
	LinkDoc            = "doc"
	LinkGeneratedIndex = "generated-index"
)

// Item is one node of a sidebar specification. A bare string in YAML or
// JSON is shorthand for a doc item.
type Item struct {
	Type  ItemType `yaml:"type,omitempty" json:"type,omitempty"`
	Label string   `yaml:"label,omitempty" json:"label,omitempty"`

	// Document reference. The first non-empty of DocumentID, DocID, ID and
	// Href is used. An Href starting with '/' is a permalink.
	DocumentID string `yaml:"documentId,omitempty" json:"documentId,omitempty"`
	DocID      string `yaml:"docId,omitempty" json:"docId,omitempty"`
	ID         string `yaml:"id,omitempty" json:"id,omitempty"`
	Href       string `yaml:"href,omitempty" json:"href,omitempty"`

	// Category fields.
	Items       []*Item       `yaml:"items,omitempty" json:"items,omitempty"`
	Collapsible *bool         `yaml:"collapsible,omitempty" json:"collapsible,omitempty"`
	Collapsed   *bool         `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Link        *CategoryLink `yaml:"link,omitempty" json:"link,omitempty"`

	// Autogenerated fields.
	DirName string `yaml:"dirName,omitempty" json:"dirName,omitempty"`
}

// CategoryLink gives a category its own page: a document or a generated index.
type CategoryLink struct {
	Type string `yaml:"type" json:"type"`
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Slug string `yaml:"slug,omitempty" json:"slug,omitempty"`
}

// UnmarshalYAML accepts the string shorthand for doc items.
func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*it = Item{Type: TypeDoc, ID: strings.TrimSpace(node.Value)}
		return nil
	}
	type plain Item
	return node.Decode((*plain)(it))
}

// Doc returns a doc item referencing id.
func Doc(id string) *Item { return &Item{Type: TypeDoc, ID: id} }

// LinkTo returns a link item with an explicit label.
func LinkTo(label, id string) *Item { return &Item{Type: TypeLink, Label: label, DocumentID: id} }

// NewCategory returns a category item with the given children.
func NewCategory(label string, items ...*Item) *Item {
	return &Item{Type: TypeCategory, Label: label, Items: items}
}

// Autogenerated returns an item listing every document under dirName.
func Autogenerated(dirName string) *Item { return &Item{Type: TypeAutogenerated, DirName: dirName} }

// kind resolves the effective item type, inferring it when Type is empty.
func (it *Item) kind() (ItemType, bool) {
	if it.Type == "" {
		switch {
		case len(it.Items) > 0 || it.Link != nil:
			return TypeCategory, true
		case it.DirName != "":
			return TypeAutogenerated, true
		default:
			return TypeLink, true
		}
	}
	t := itemTypeNormalizer.Normalize(string(it.Type))
	return t, t != ""
}

func (it *Item) ref() string {
	for _, s := range []string{it.DocumentID, it.DocID, it.ID, it.Href} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
