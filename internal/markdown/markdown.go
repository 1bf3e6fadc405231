// Package markdown extracts navigation metadata from Markdown bodies.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/foundation/normalization"
)

// Options controls which headings enter the table of contents.
type Options struct {
	TOCMinLevel int
	TOCMaxLevel int
}

// DefaultOptions lists h2 and h3 headings.
func DefaultOptions() Options { return Options{TOCMinLevel: 2, TOCMaxLevel: 3} }

// Analysis is what a document body contributes to its descriptor.
type Analysis struct {
	// Title is the text of the first h1, empty if there is none.
	Title string
	// Description is the plain text of the first top-level paragraph.
	Description string
	TOC         []content.Heading
	Links       []Link
}

// Analyze parses a Markdown body (frontmatter already removed).
func Analyze(body []byte, opts Options) Analysis {
	if opts.TOCMinLevel == 0 && opts.TOCMaxLevel == 0 {
		opts = DefaultOptions()
	}
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	root := md.Parser().Parse(text.NewReader(body))

	var a Analysis
	ids := make(map[string]int)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			value := plainText(node, body)
			if node.Level == 1 {
				if a.Title == "" {
					a.Title = value
				}
				return gmast.WalkSkipChildren, nil
			}
			if node.Level < opts.TOCMinLevel || node.Level > opts.TOCMaxLevel || value == "" {
				return gmast.WalkSkipChildren, nil
			}
			a.TOC = append(a.TOC, content.Heading{
				Value: value,
				ID:    headingID(node, value, ids),
				Level: node.Level,
			})
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph:
			if a.Description == "" && node.Parent() == root {
				if d := plainText(node, body); !isESM(d) {
					a.Description = d
				}
			}
		case *gmast.Link:
			a.Links = append(a.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		case *gmast.Image:
			a.Links = append(a.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.AutoLink:
			a.Links = append(a.Links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		}
		return gmast.WalkContinue, nil
	})
	return a
}

// headingID honours an explicit {#id} attribute and otherwise slugifies the
// heading, suffixing repeats with -1, -2, ...
func headingID(h *gmast.Heading, value string, seen map[string]int) string {
	if v, ok := h.AttributeString("id"); ok {
		if b, ok := v.([]byte); ok && len(b) > 0 {
			return string(b)
		}
	}
	id := normalization.Slugify(value)
	n := seen[id]
	seen[id] = n + 1
	if n > 0 {
		return fmt.Sprintf("%s-%d", id, n)
	}
	return id
}

// plainText renders the inline content of n as text, dropping markup and
// inline HTML tags.
func plainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	var collect func(gmast.Node)
	collect = func(n gmast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *gmast.Text:
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *gmast.String:
				buf.Write(node.Value)
			case *gmast.RawHTML:
				for i := 0; i < node.Segments.Len(); i++ {
					seg := node.Segments.At(i)
					buf.Write(seg.Value(source))
				}
			case *gmast.AutoLink:
				buf.Write(node.Label(source))
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return strings.Join(strings.Fields(StripHTML(buf.String())), " ")
}

// isESM reports MDX import/export lines, which render to nothing.
func isESM(s string) bool {
	return strings.HasPrefix(s, "import ") || strings.HasPrefix(s, "export ")
}
