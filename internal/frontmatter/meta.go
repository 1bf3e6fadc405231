package frontmatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Meta holds the frontmatter keys that affect navigation. Fields keeps the
// full decoded map, known keys included.
type Meta struct {
	ID              string
	Title           string
	Description     string
	Slug            string
	SidebarPosition *int
	SidebarLabel    string
	Draft           bool
	Unlisted        bool
	Tags            []string

	// nil when the key is absent; a pointer to "" when it is null or empty.
	PaginationPrev *string
	PaginationNext *string

	Fields map[string]any
}

// Decode parses raw frontmatter and extracts the known keys.
func Decode(fm []byte) (Meta, error) {
	fields, err := Parse(fm)
	if err != nil {
		return Meta{}, err
	}
	return FromFields(fields)
}

// FromFields extracts the known keys from an already parsed map.
func FromFields(fields map[string]any) (Meta, error) {
	m := Meta{Fields: fields}
	var err error
	if m.ID, err = stringField(fields, "id"); err != nil {
		return Meta{}, err
	}
	if m.Title, err = stringField(fields, "title"); err != nil {
		return Meta{}, err
	}
	if m.Description, err = stringField(fields, "description"); err != nil {
		return Meta{}, err
	}
	if m.Slug, err = stringField(fields, "slug"); err != nil {
		return Meta{}, err
	}
	if m.SidebarLabel, err = stringField(fields, "sidebar_label"); err != nil {
		return Meta{}, err
	}
	if m.SidebarPosition, err = intField(fields, "sidebar_position"); err != nil {
		return Meta{}, err
	}
	if m.Draft, err = boolField(fields, "draft"); err != nil {
		return Meta{}, err
	}
	if m.Unlisted, err = boolField(fields, "unlisted"); err != nil {
		return Meta{}, err
	}
	if m.Tags, err = tagsField(fields, "tags"); err != nil {
		return Meta{}, err
	}
	if m.PaginationPrev, err = optionalField(fields, "pagination_prev"); err != nil {
		return Meta{}, err
	}
	if m.PaginationNext, err = optionalField(fields, "pagination_next"); err != nil {
		return Meta{}, err
	}
	return m, nil
}

func invalid(key string, v any) error {
	return fmt.Errorf("%w: %s has unsupported value %v (%T)", ErrInvalidField, key, v, v)
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		return "", invalid(key, v)
	}
}

func intField(fields map[string]any, key string) (*int, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		// Fractional positions order between integers; keep the floor.
		n = int(math.Floor(x))
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, invalid(key, v)
		}
		n = parsed
	default:
		return nil, invalid(key, v)
	}
	return &n, nil
}

func boolField(fields map[string]any, key string) (bool, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return false, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, invalid(key, v)
		}
		return b, nil
	default:
		return false, invalid(key, v)
	}
}

// tagsField accepts a list of strings or of {label: ...} maps, or a single
// comma separated string.
func tagsField(fields map[string]any, key string) ([]string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	var tags []string
	switch x := v.(type) {
	case string:
		for t := range strings.SplitSeq(x, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	case []any:
		for _, item := range x {
			switch t := item.(type) {
			case string:
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			case map[string]any:
				label, _ := t["label"].(string)
				if label = strings.TrimSpace(label); label == "" {
					return nil, invalid(key, item)
				}
				tags = append(tags, label)
			default:
				return nil, invalid(key, item)
			}
		}
	default:
		return nil, invalid(key, v)
	}
	return tags, nil
}

func optionalField(fields map[string]any, key string) (*string, error) {
	v, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var s string
	switch x := v.(type) {
	case nil:
	case string:
		s = strings.TrimSpace(x)
	default:
		return nil, invalid(key, v)
	}
	return &s, nil
}
