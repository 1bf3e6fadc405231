package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/content"
)

const memoryDoc = `import Tabs from '@theme/Tabs';

# Memory *Model*

SYCL offers <b>buffers</b> &amp; USM
for moving data.

## Buffers and Accessors

See [the queue](first-step.md#queue) and ![diagram](img/buffers.png).

### Host accessors

## Unified Shared Memory {#usm}

## Buffers and Accessors

#### Too deep
`

func TestAnalyze(t *testing.T) {
	a := Analyze([]byte(memoryDoc), DefaultOptions())

	assert.Equal(t, "Memory Model", a.Title)
	assert.Equal(t, "SYCL offers buffers & USM for moving data.", a.Description)
	assert.Equal(t, []content.Heading{
		{Value: "Buffers and Accessors", ID: "buffers-and-accessors", Level: 2},
		{Value: "Host accessors", ID: "host-accessors", Level: 3},
		{Value: "Unified Shared Memory", ID: "usm", Level: 2},
		{Value: "Buffers and Accessors", ID: "buffers-and-accessors-1", Level: 2},
	}, a.TOC)

	require.Len(t, a.Links, 2)
	assert.Equal(t, Link{Kind: LinkKindInline, Destination: "first-step.md#queue"}, a.Links[0])
	assert.Equal(t, LinkKindImage, a.Links[1].Kind)
}

func TestAnalyzeWithoutHeadings(t *testing.T) {
	a := Analyze([]byte("Just a paragraph.\n\n- a list item\n"), Options{})
	assert.Empty(t, a.Title)
	assert.Equal(t, "Just a paragraph.", a.Description)
	assert.Empty(t, a.TOC)
}

func TestAnalyzeNestedParagraphIsNotDescription(t *testing.T) {
	a := Analyze([]byte("> quoted\n\nTop level.\n"), Options{})
	assert.Equal(t, "Top level.", a.Description)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "a b & c", StripHTML("<span>a</span> <em>b</em> &amp; c"))
	assert.Equal(t, "kept", StripHTML("<script>drop()</script>kept"))
}

func TestLinkDocumentTarget(t *testing.T) {
	exts := []string{".md", ".mdx"}
	tests := []struct {
		link Link
		want string
		ok   bool
	}{
		{Link{LinkKindInline, "memory.md#buffers"}, "sycl/memory.md", true},
		{Link{LinkKindInline, "../parallel-patterns.mdx"}, "parallel-patterns.mdx", true},
		{Link{LinkKindInline, "/parallel-sorting/merge-sort.md"}, "parallel-sorting/merge-sort.md", true},
		{Link{LinkKindInline, "https://example.com/a.md"}, "", false},
		{Link{LinkKindInline, "#local"}, "", false},
		{Link{LinkKindInline, "diagram.png"}, "", false},
		{Link{LinkKindImage, "memory.md"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.link.Destination, func(t *testing.T) {
			got, ok := tt.link.DocumentTarget("sycl", exts)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
