package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/content"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/site"
)

const testConfig = `version: "1"
site:
  base_path: /parallel-programming-essentials/
docs:
  dir: docs
  sidebars: sidebars.yaml
`

const testSidebars = `tutorialSidebar:
  - type: category
    label: SYCL Quickstart
    link: {type: generated-index}
    items:
      - sycl/first-step
      - sycl/memory
  - parallel-patterns
`

func writeSite(t *testing.T, extraConfig string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"docnav.yaml":               testConfig + extraConfig,
		"sidebars.yaml":             testSidebars,
		"docs/sycl/first-step.md":   "---\nsidebar_position: 1\n---\n# First Step into SYCL\n\nSingle source.\n",
		"docs/sycl/memory.md":       "---\nsidebar_position: 2\n---\n# Memory\n\nBuffers and accessors.\n",
		"docs/parallel-patterns.md": "---\ntitle: Parallel Patterns\n---\nBuilding blocks.\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("docnav"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(append([]string{"--no-color"}, args...))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = kctx.Run(&Global{Out: &buf}, &cli)
	return buf.String(), err
}

func TestBuild_PrintsSummaryAndWritesVersion(t *testing.T) {
	root := writeSite(t, "")
	out := filepath.Join(root, "version.json")

	stdout, err := run(t, "-c", filepath.Join(root, "docnav.yaml"), "build", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "documents:   3 (3 in sidebars)")
	assert.Contains(t, stdout, "- tutorialSidebar (3)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var v struct {
		SidebarNames []string                    `json:"sidebarNames"`
		DocsSidebars map[string][]map[string]any `json:"docsSidebars"`
		Docs         map[string]site.DocSummary  `json:"docs"`
	}
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, []string{"tutorialSidebar"}, v.SidebarNames)
	assert.Len(t, v.Docs, 3)
	assert.Equal(t, "tutorialSidebar", v.Docs["sycl/memory"].Sidebar)

	items := v.DocsSidebars["tutorialSidebar"]
	require.Len(t, items, 2)
	assert.Equal(t, "category", items[0]["type"])
	assert.Equal(t, "SYCL Quickstart", items[0]["label"])
	assert.Len(t, items[0]["items"], 2)
	assert.Equal(t, "link", items[1]["type"])
	assert.Equal(t, "parallel-patterns", items[1]["docId"])
}

func TestBuild_RecordsEvents(t *testing.T) {
	root := writeSite(t, "events:\n  path: events.db\n")

	_, err := run(t, "-c", filepath.Join(root, "docnav.yaml"), "build")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "events.db"))
}

func TestBuild_MissingExplicitConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "build")
	require.Error(t, err)
}

func TestInspect_Trees(t *testing.T) {
	root := writeSite(t, "")

	stdout, err := run(t, "-c", filepath.Join(root, "docnav.yaml"), "inspect")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tutorialSidebar (3 documents)")
	assert.Contains(t, stdout, "+ SYCL Quickstart")
	assert.Contains(t, stdout, "    - Memory [sycl/memory]")
	assert.Contains(t, stdout, "  - Parallel Patterns [parallel-patterns]")
}

func TestInspect_Document(t *testing.T) {
	root := writeSite(t, "")

	stdout, err := run(t, "-c", filepath.Join(root, "docnav.yaml"), "inspect", "--doc", "sycl/memory")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sycl/memory: Memory")
	assert.Contains(t, stdout, "breadcrumb: SYCL Quickstart")
	assert.Contains(t, stdout, "previous:   First Step into SYCL")
	assert.Contains(t, stdout, "next:       Parallel Patterns")
}

func TestInspect_Errors(t *testing.T) {
	root := writeSite(t, "")
	cfgPath := filepath.Join(root, "docnav.yaml")

	_, err := run(t, "-c", cfgPath, "inspect", "--doc", "nope")
	require.ErrorIs(t, err, content.ErrNotFound)

	_, err = run(t, "-c", cfgPath, "inspect", "--sidebar", "nope")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docnav.yaml")

	stdout, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")
	_, err = config.Load(path)
	require.NoError(t, err)

	_, err = run(t, "-c", path, "init")
	require.ErrorIs(t, err, config.ErrConfigExists)

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestVersion_JSON(t *testing.T) {
	stdout, err := run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info["go_version"])
}

type failingBuilder struct{}

func (failingBuilder) Build(context.Context) (*site.Snapshot, error) {
	return nil, ferrors.BuildError("boom").Build()
}

func TestRebuildFunc_SwallowsBuildErrors(t *testing.T) {
	store := site.NewStore(failingBuilder{})
	fn := rebuildFunc(store, site.TriggerWatch)

	require.NoError(t, fn(context.Background()))
	require.Error(t, store.LastError())
	assert.Nil(t, store.Current())
}

func TestServe_StopsOnCancel(t *testing.T) {
	root := writeSite(t, "server:\n  addr: 127.0.0.1:0\nwatch:\n  enabled: true\n  debounce: 50ms\n")
	cfg, err := config.Load(filepath.Join(root, "docnav.yaml"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
