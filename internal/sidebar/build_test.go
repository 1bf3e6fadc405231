package sidebar

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/content"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

func ptr[T any](v T) *T { return &v }

func newRegistry(t *testing.T, descs ...content.Descriptor) *content.Registry {
	t.Helper()
	reg := content.NewRegistry(content.Options{BasePath: "/parallel-programming-essentials/", RoutePrefix: "docs"})
	for _, d := range descs {
		_, err := reg.Register(d)
		require.NoError(t, err)
	}
	reg.Seal()
	return reg
}

func tutorialRegistry(t *testing.T) *content.Registry {
	return newRegistry(t,
		content.Descriptor{ID: "sycl/first-step", Title: "First Step"},
		content.Descriptor{ID: "sycl/memory", Title: "Memory"},
		content.Descriptor{ID: "sycl/basic-kernel", Title: "Basic Kernel"},
		content.Descriptor{ID: "sycl/exception", Title: "Exception"},
		content.Descriptor{ID: "parallel-patterns", Title: "Parallel Patterns"},
		content.Descriptor{ID: "parallel-prefix-sum", Title: "Parallel Prefix Sum"},
		content.Descriptor{ID: "parallel-sorting/merge-sort", Title: "Merge Sort"},
		content.Descriptor{ID: "parallel-sorting/bitonic-sort", Title: "Bitonic Sort"},
	)
}

func tutorialItems() []*Item {
	return []*Item{
		NewCategory("SYCL Quickstart",
			Doc("sycl/first-step"),
			Doc("sycl/memory"),
			Doc("sycl/basic-kernel"),
			Doc("sycl/exception"),
		),
		LinkTo("Parallel Patterns", "parallel-patterns"),
		LinkTo("Parallel Prefix Sum", "parallel-prefix-sum"),
		NewCategory("Parallel Sorting",
			Doc("parallel-sorting/merge-sort"),
			Doc("parallel-sorting/bitonic-sort"),
		),
	}
}

func TestBuildTutorialSidebar(t *testing.T) {
	tree, err := Build(tutorialItems(), tutorialRegistry(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sycl/first-step", "sycl/memory", "sycl/basic-kernel", "sycl/exception",
		"parallel-patterns", "parallel-prefix-sum",
		"parallel-sorting/merge-sort", "parallel-sorting/bitonic-sort",
	}, tree.Documents())

	nb, err := tree.NeighborsOf("sycl/memory")
	require.NoError(t, err)
	require.NotNil(t, nb.Previous)
	require.NotNil(t, nb.Next)
	assert.Equal(t, "sycl/first-step", nb.Previous.DocumentID)
	assert.Equal(t, "sycl/basic-kernel", nb.Next.DocumentID)
	assert.Equal(t, "/parallel-programming-essentials/docs/sycl/basic-kernel", nb.Next.Permalink)

	nb, err = tree.NeighborsOf("parallel-prefix-sum")
	require.NoError(t, err)
	assert.Equal(t, "parallel-patterns", nb.Previous.DocumentID)
	assert.Equal(t, "parallel-sorting/merge-sort", nb.Next.DocumentID)
	assert.Equal(t, "Merge Sort", nb.Next.Title)

	path, err := tree.PathOf("parallel-sorting/merge-sort")
	require.NoError(t, err)
	assert.Equal(t, []string{"Parallel Sorting"}, path)

	path, err = tree.PathOf("parallel-patterns")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBuildEnds(t *testing.T) {
	tree, err := Build(tutorialItems(), tutorialRegistry(t))
	require.NoError(t, err)

	first, err := tree.NeighborsOf("sycl/first-step")
	require.NoError(t, err)
	assert.Nil(t, first.Previous)

	last, err := tree.NeighborsOf("parallel-sorting/bitonic-sort")
	require.NoError(t, err)
	assert.Nil(t, last.Next)
}

func TestBuildDanglingReference(t *testing.T) {
	items := tutorialItems()
	items[0].Items = append(items[0].Items, &Item{Type: TypeLink, Label: "Unknown", DocumentID: "sycl/unknown"})

	tree, err := Build(items, tutorialRegistry(t))
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Equal(t, "sycl/unknown", ferrors.ContextString(err, "doc_id"))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
}

func TestBuildCycle(t *testing.T) {
	loop := NewCategory("Loop", Doc("parallel-patterns"))
	loop.Items = append(loop.Items, loop)

	tree, err := Build([]*Item{loop}, tutorialRegistry(t))
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrCyclicSidebar)
}

func TestBuildSharedSubtreeIsNotACycle(t *testing.T) {
	// The same item pointer in two sibling positions is not a cycle, but the
	// document it references is then listed twice.
	shared := Doc("parallel-patterns")
	_, err := Build([]*Item{NewCategory("A", shared), NewCategory("B", shared)}, tutorialRegistry(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.False(t, errors.Is(err, ErrCyclicSidebar))
}

func TestBuildDuplicateReference(t *testing.T) {
	items := tutorialItems()
	items = append(items, Doc("sycl/memory"))

	tree, err := Build(items, tutorialRegistry(t))
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.Equal(t, "sycl/memory", ferrors.ContextString(err, "doc_id"))
}

func TestBuildInvalidItems(t *testing.T) {
	reg := tutorialRegistry(t)
	tests := map[string][]*Item{
		"nil item":            {nil},
		"unknown type":        {{Type: "widget", ID: "parallel-patterns"}},
		"unlabelled":          {{Type: TypeCategory, Items: []*Item{Doc("parallel-patterns")}}},
		"link without ref":    {{Type: TypeLink, Label: "Nowhere"}},
		"bad category link":   {{Type: TypeCategory, Label: "X", Link: &CategoryLink{Type: "page"}}},
		"doc link without id": {{Type: TypeCategory, Label: "X", Link: &CategoryLink{Type: LinkDoc}}},
		"autogen without dir": {{Type: TypeAutogenerated}},
	}
	for name, items := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(items, reg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSidebar)
		})
	}
}

func TestBuildEmptySidebar(t *testing.T) {
	tree, err := Build(nil, tutorialRegistry(t))
	require.NoError(t, err)
	assert.Zero(t, tree.Len())

	_, err = tree.NeighborsOf("parallel-patterns")
	assert.ErrorIs(t, err, ErrUnlisted)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestBuildUnreferencedDocument(t *testing.T) {
	tree, err := Build([]*Item{Doc("parallel-patterns")}, tutorialRegistry(t))
	require.NoError(t, err)
	_, err = tree.PathOf("sycl/memory")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestBuildCategoryPage(t *testing.T) {
	reg := newRegistry(t,
		content.Descriptor{ID: "sycl/index", Title: "SYCL"},
		content.Descriptor{ID: "sycl/memory", Title: "Memory"},
		content.Descriptor{ID: "outro", Title: "Outro"},
	)
	cat := NewCategory("SYCL Quickstart", Doc("sycl/memory"))
	cat.Link = &CategoryLink{Type: LinkDoc, ID: "sycl/index"}

	tree, err := Build([]*Item{cat, Doc("outro")}, reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"sycl/index", "sycl/memory", "outro"}, tree.Documents())
	path, err := tree.PathOf("sycl/index")
	require.NoError(t, err)
	assert.Empty(t, path)

	nb, err := tree.NeighborsOf("sycl/memory")
	require.NoError(t, err)
	assert.Equal(t, "SYCL Quickstart", nb.Previous.Title)

	resolved := tree.Items()[0].(*Category)
	assert.Equal(t, "sycl/index", resolved.Href)
	assert.Equal(t, "/parallel-programming-essentials/docs/sycl", resolved.Permalink)
	assert.False(t, resolved.GeneratedIndex)
}

func TestBuildGeneratedIndex(t *testing.T) {
	reg := tutorialRegistry(t)
	viaLink := NewCategory("SYCL Quickstart", Doc("sycl/memory"))
	viaLink.Link = &CategoryLink{Type: LinkGeneratedIndex}
	viaHref := NewCategory("Parallel Sorting", Doc("parallel-sorting/merge-sort"))
	viaHref.Href = "/parallel-programming-essentials/docs/category/parallel-sorting"

	tree, err := Build([]*Item{viaLink, viaHref}, reg)
	require.NoError(t, err)

	// Generated index pages are not documents and take no part in prev/next.
	assert.Equal(t, []string{"sycl/memory", "parallel-sorting/merge-sort"}, tree.Documents())

	first := tree.Items()[0].(*Category)
	assert.True(t, first.GeneratedIndex)
	assert.Equal(t, "/parallel-programming-essentials/docs/category/sycl-quickstart", first.Permalink)
	second := tree.Items()[1].(*Category)
	assert.True(t, second.GeneratedIndex)
	assert.Equal(t, viaHref.Href, second.Permalink)
}

func TestBuildHrefByPermalink(t *testing.T) {
	tree, err := Build([]*Item{{Type: TypeLink, Label: "Memory", Href: "/parallel-programming-essentials/docs/sycl/memory"}}, tutorialRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"sycl/memory"}, tree.Documents())

	_, err = Build([]*Item{{Type: TypeLink, Label: "External", Href: "https://example.com"}}, tutorialRegistry(t))
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestBuildUnlistedDocument(t *testing.T) {
	reg := newRegistry(t,
		content.Descriptor{ID: "a", Title: "A"},
		content.Descriptor{ID: "hidden", Title: "Hidden", Unlisted: true},
		content.Descriptor{ID: "b", Title: "B"},
	)
	tree, err := Build([]*Item{Doc("a"), Doc("hidden"), Doc("b")}, reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tree.Documents())
	nb, err := tree.NeighborsOf("a")
	require.NoError(t, err)
	assert.Equal(t, "b", nb.Next.DocumentID)

	_, err = tree.NeighborsOf("hidden")
	assert.ErrorIs(t, err, ErrUnlisted)
}

func TestBuildPaginationOverrides(t *testing.T) {
	reg := newRegistry(t,
		content.Descriptor{ID: "a", Title: "A"},
		content.Descriptor{ID: "b", Title: "B", PaginationNext: ptr(""), PaginationPrev: ptr("c")},
		content.Descriptor{ID: "c", Title: "C"},
	)
	tree, err := Build([]*Item{Doc("a"), Doc("b"), LinkTo("Third", "c")}, reg)
	require.NoError(t, err)

	nb, err := tree.NeighborsOf("b")
	require.NoError(t, err)
	assert.Nil(t, nb.Next)
	require.NotNil(t, nb.Previous)
	assert.Equal(t, "c", nb.Previous.DocumentID)
	assert.Equal(t, "Third", nb.Previous.Title)

	// Overrides are per-document; neighbors of the others are unchanged.
	nb, err = tree.NeighborsOf("a")
	require.NoError(t, err)
	assert.Equal(t, "b", nb.Next.DocumentID)
}

func TestBuildPaginationOverrideUnknown(t *testing.T) {
	reg := newRegistry(t,
		content.Descriptor{ID: "a", Title: "A", PaginationNext: ptr("missing")},
	)
	tree, err := Build([]*Item{Doc("a")}, reg)
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Equal(t, "missing", ferrors.ContextString(err, "doc_id"))
}

func TestBuildLabels(t *testing.T) {
	reg := newRegistry(t,
		content.Descriptor{ID: "a", Title: "Alpha Title", SidebarLabel: "Alpha"},
		content.Descriptor{ID: "b", Title: "Beta"},
	)
	tree, err := Build([]*Item{Doc("a"), Doc("b")}, reg)
	require.NoError(t, err)

	assert.Equal(t, "Alpha", tree.Items()[0].NodeLabel())
	nb, err := tree.NeighborsOf("b")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", nb.Previous.Title)
}

func TestBuildCollapseDefaults(t *testing.T) {
	cat := NewCategory("SYCL Quickstart", Doc("sycl/memory"))
	cat.Collapsed = ptr(false)
	tree, err := Build([]*Item{cat}, tutorialRegistry(t))
	require.NoError(t, err)

	resolved := tree.Items()[0].(*Category)
	assert.True(t, resolved.Collapsible)
	assert.False(t, resolved.Collapsed)
}

func TestTreeJSON(t *testing.T) {
	cat := NewCategory("Parallel Sorting", Doc("parallel-sorting/merge-sort"))
	cat.Link = &CategoryLink{Type: LinkGeneratedIndex}
	tree, err := Build([]*Item{Doc("parallel-patterns"), cat}, tutorialRegistry(t))
	require.NoError(t, err)

	data, err := json.Marshal(tree.Items())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"link","label":"Parallel Patterns","href":"/parallel-programming-essentials/docs/parallel-patterns","docId":"parallel-patterns"},
		{"type":"category","label":"Parallel Sorting","collapsible":true,"collapsed":true,
		 "href":"/parallel-programming-essentials/docs/category/parallel-sorting",
		 "items":[{"type":"link","label":"Merge Sort","href":"/parallel-programming-essentials/docs/parallel-sorting/merge-sort","docId":"parallel-sorting/merge-sort"}]}
	]`, string(data))
}

func TestTreeWalk(t *testing.T) {
	tree, err := Build(tutorialItems(), tutorialRegistry(t))
	require.NoError(t, err)

	var labels []string
	tree.Walk(func(n Node, depth int) bool {
		if depth == 0 {
			labels = append(labels, n.NodeLabel())
		}
		return depth == 0 && n.NodeLabel() != "SYCL Quickstart"
	})
	assert.Equal(t, []string{"SYCL Quickstart", "Parallel Patterns", "Parallel Prefix Sum", "Parallel Sorting"}, labels)
}
