package sidebar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

func TestParseList(t *testing.T) {
	spec, err := Parse([]byte(`
- type: category
  label: SYCL Quickstart
  items:
    - sycl/first-step
    - sycl/memory
- type: link
  label: Parallel Patterns
  documentId: parallel-patterns
`))
	require.NoError(t, err)
	require.Len(t, spec.Sidebars, 1)
	assert.Equal(t, DefaultName, spec.Sidebars[0].Name)

	items := spec.Sidebars[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, TypeCategory, items[0].Type)
	assert.Equal(t, "sycl/memory", items[0].Items[1].ref())
	assert.Equal(t, TypeDoc, items[0].Items[1].Type)
	assert.Equal(t, "parallel-patterns", items[1].ref())
}

func TestParseNamedKeepsOrder(t *testing.T) {
	spec, err := Parse([]byte(`
zeta: [a]
alpha: [b]
`))
	require.NoError(t, err)
	require.Len(t, spec.Sidebars, 2)
	assert.Equal(t, "zeta", spec.Sidebars[0].Name)
	assert.Equal(t, "alpha", spec.Sidebars[1].Name)
}

func TestParseDocsSidebarsBlob(t *testing.T) {
	// JSON shape emitted by static site generators.
	spec, err := Parse([]byte(`{"version":{"docsSidebars":{"tutorialSidebar":[
		{"type":"category","label":"Parallel Sorting","collapsible":true,"collapsed":true,
		 "href":"/parallel-programming-essentials/docs/category/parallel-sorting",
		 "items":[{"type":"link","label":"Merge Sort","href":"/parallel-programming-essentials/docs/parallel-sorting/merge-sort","docId":"parallel-sorting/merge-sort"}]},
		{"type":"link","label":"Parallel Patterns","href":"/parallel-programming-essentials/docs/parallel-patterns","docId":"parallel-patterns"}
	]}}}`))
	require.NoError(t, err)
	require.Len(t, spec.Sidebars, 1)
	assert.Equal(t, "tutorialSidebar", spec.Sidebars[0].Name)

	items := spec.Sidebars[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, "parallel-sorting/merge-sort", items[0].Items[0].ref())

	tree, err := Build(items, tutorialRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"parallel-sorting/merge-sort", "parallel-patterns"}, tree.Documents())
	assert.True(t, tree.Items()[0].(*Category).GeneratedIndex)
}

func TestParseInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"empty":       "",
		"scalar":      "hello",
		"not a list":  "guide: intro",
		"no sidebars": "{}",
		"bad yaml":    "- [",
		"bad item":    "- items: 3",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSidebar)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sidebars.yaml")
	require.NoError(t, os.WriteFile(file, []byte("guide:\n  - intro\n"), 0o600))

	spec, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "guide", spec.Sidebars[0].Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))

	require.NoError(t, os.WriteFile(file, []byte("guide: 3\n"), 0o600))
	_, err = Load(file)
	require.Error(t, err)
	assert.Equal(t, file, ferrors.ContextString(err, "file"))
}
