package markdown

import (
	"net/url"
	"path"
	"strings"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// DocumentTarget returns the source path a link points at, relative to the
// directory of the linking file, when the link names another Markdown file.
// Fragments and queries are dropped.
func (l Link) DocumentTarget(fromDir string, extensions []string) (string, bool) {
	if l.Kind != LinkKindInline {
		return "", false
	}
	u, err := url.Parse(l.Destination)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			if strings.HasPrefix(u.Path, "/") {
				return strings.TrimPrefix(path.Clean(u.Path), "/"), true
			}
			return path.Join(fromDir, u.Path), true
		}
	}
	return "", false
}
