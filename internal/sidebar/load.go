package sidebar

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Load reads a sidebar specification file. See Parse for accepted layouts.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read sidebar file").
			WithContext("file", path).
			WithCause(err).
			Build()
	}
	spec, err := Parse(data)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("file", path)
		}
		return nil, err
	}
	return spec, nil
}

// Parse decodes a sidebar specification. YAML and JSON are accepted in
// these layouts:
//
//	- intro                 # a list: one sidebar named DefaultName
//	guide: [intro, ...]     # a mapping of sidebar name to items
//	docsSidebars: {...}     # the mapping nested under docsSidebars
//	version: {docsSidebars: {...}}
//
// Sidebars keep their declaration order.
func Parse(data []byte) (*Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidSpec("sidebar file is not valid YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, invalidSpec("sidebar file is empty", nil)
	}
	root := unwrap(doc.Content[0])

	switch root.Kind {
	case yaml.SequenceNode:
		items, err := decodeItems(root)
		if err != nil {
			return nil, err
		}
		return &Spec{Sidebars: []Named{{Name: DefaultName, Items: items}}}, nil
	case yaml.MappingNode:
		spec := &Spec{}
		for i := 0; i+1 < len(root.Content); i += 2 {
			name := strings.TrimSpace(root.Content[i].Value)
			value := root.Content[i+1]
			if value.Kind != yaml.SequenceNode {
				return nil, invalidSpec("sidebar "+name+" is not a list", nil)
			}
			items, err := decodeItems(value)
			if err != nil {
				return nil, err
			}
			spec.Sidebars = append(spec.Sidebars, Named{Name: name, Items: items})
		}
		if len(spec.Sidebars) == 0 {
			return nil, invalidSpec("sidebar file declares no sidebars", nil)
		}
		return spec, nil
	default:
		return nil, invalidSpec("sidebar file must be a list or a mapping", nil)
	}
}

// unwrap descends through the docsSidebars wrappers.
func unwrap(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.MappingNode {
		next := lookup(n, "docsSidebars")
		if next == nil {
			if v := lookup(n, "version"); v != nil && v.Kind == yaml.MappingNode {
				next = lookup(v, "docsSidebars")
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
	return n
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func decodeItems(n *yaml.Node) ([]*Item, error) {
	var items []*Item
	if err := n.Decode(&items); err != nil {
		return nil, invalidSpec("malformed sidebar item", err)
	}
	return items, nil
}

func invalidSpec(msg string, cause error) error {
	b := ferrors.ValidationError(msg).WithCause(ErrInvalidSidebar)
	if cause != nil {
		b = b.WithContext("detail", cause.Error())
	}
	return b.Build()
}
