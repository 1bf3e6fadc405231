package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/docs"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/notify"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
)

const tutorialSidebars = `tutorialSidebar:
  - type: category
    label: SYCL Quickstart
    link: {type: generated-index}
    items:
      - sycl/first-step
      - sycl/memory
  - parallel-patterns
`

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func tutorialSite(t *testing.T, sidebars string) Options {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/sycl/first-step.md": "---\nsidebar_position: 1\n---\n# First Step into SYCL\n\nSYCL is a single-source model.\n",
		"docs/sycl/memory.md":     "---\nsidebar_position: 2\n---\n# Memory\n\nManaging data matters. See [first step](first-step.md).\n",
		"docs/parallel-patterns.md": "---\ntitle: Parallel Patterns\ndescription: Building blocks.\n---\n" +
			"Body linking to [a missing page](missing.md).\n",
	})
	sidebarsFile := filepath.Join(root, "sidebars.yaml")
	if sidebars != "" {
		writeFiles(t, root, map[string]string{"sidebars.yaml": sidebars})
	}
	return Options{
		Discovery:    docs.Options{Dir: filepath.Join(root, "docs")},
		Content:      content.Options{BasePath: "/parallel-programming-essentials/", RoutePrefix: "docs"},
		SidebarsFile: sidebarsFile,
	}
}

func TestBuilder_Build(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, tutorialSidebars)).Build(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.BuildID)
	assert.Len(t, snap.Fingerprint, 64)
	assert.Equal(t, 3, snap.Registry.Len())
	assert.True(t, snap.Registry.Sealed())
	assert.Equal(t, []string{"tutorialSidebar"}, snap.Sidebars.Names())

	nb, err := snap.NeighborsOf("sycl/memory")
	require.NoError(t, err)
	require.NotNil(t, nb.Previous)
	require.NotNil(t, nb.Next)
	assert.Equal(t, "sycl/first-step", nb.Previous.DocumentID)
	assert.Equal(t, "parallel-patterns", nb.Next.DocumentID)

	path, err := snap.PathOf("sycl/memory")
	require.NoError(t, err)
	assert.Equal(t, []string{"SYCL Quickstart"}, path)

	var ids []string
	for d := range snap.All() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"parallel-patterns", "sycl/first-step", "sycl/memory"}, ids)
}

func TestBuilder_DefaultSidebarWhenFileMissing(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, "")).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{sidebar.DefaultName}, snap.Sidebars.Names())
	assert.Equal(t, 3, snap.Sidebars.Len())

	path, err := snap.PathOf("sycl/first-step")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sycl"}, path)
}

func TestBuilder_FingerprintTracksSidebars(t *testing.T) {
	opts := tutorialSite(t, tutorialSidebars)
	a, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	b, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.BuildID, b.BuildID)

	require.NoError(t, os.WriteFile(opts.SidebarsFile, []byte("tutorialSidebar: [parallel-patterns]\n"), 0o600))
	c, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestBuilder_DanglingReference(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, "docs: [sycl/first-step, sycl/unknown]\n")).Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, sidebar.ErrDanglingReference)
	assert.Equal(t, "sycl/unknown", ferrors.ContextString(err, "doc_id"))
	assert.Equal(t, "dangling", FailureKind(err))
}

func TestBuilder_InvalidSidebarFile(t *testing.T) {
	opts := tutorialSite(t, "docs: {not: a list}\n")
	_, err := NewBuilder(opts).Build(context.Background())
	require.ErrorIs(t, err, sidebar.ErrInvalidSidebar)
	assert.Equal(t, opts.SidebarsFile, ferrors.ContextString(err, "file"))
	assert.Equal(t, "invalid", FailureKind(err))
}

func TestBuilder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(tutorialSite(t, tutorialSidebars)).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_Metadata(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, tutorialSidebars)).Build(context.Background())
	require.NoError(t, err)

	md, err := snap.Metadata("sycl/memory")
	require.NoError(t, err)
	assert.Equal(t, "Memory", md.Title)
	assert.Equal(t, "/parallel-programming-essentials/docs/sycl/memory", md.Permalink)
	assert.Equal(t, "tutorialSidebar", md.Sidebar)
	assert.Equal(t, CurrentVersion, md.Version)
	require.NotNil(t, md.Previous)
	assert.Equal(t, PageLink{Title: "First Step into SYCL", Permalink: "/parallel-programming-essentials/docs/sycl/first-step"}, *md.Previous)

	raw, err := json.Marshal(md)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"id", "title", "description", "slug", "permalink", "sidebar", "previous", "next", "sourceDirName"} {
		assert.Contains(t, decoded, key)
	}

	_, err = snap.Metadata("nope")
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestSnapshot_UnlistedDocument(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, "docs: [parallel-patterns]\n")).Build(context.Background())
	require.NoError(t, err)

	md, err := snap.Metadata("sycl/memory")
	require.NoError(t, err)
	assert.Empty(t, md.Sidebar)
	assert.Nil(t, md.Previous)
	assert.Empty(t, md.Breadcrumb)

	_, err = snap.NeighborsOf("sycl/memory")
	require.ErrorIs(t, err, content.ErrNotFound)
	_, err = snap.PathOf("missing")
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestSnapshot_Version(t *testing.T) {
	snap, err := NewBuilder(tutorialSite(t, tutorialSidebars)).Build(context.Background())
	require.NoError(t, err)

	v := snap.Version()
	assert.Equal(t, []string{"tutorialSidebar"}, v.SidebarNames)
	require.Contains(t, v.DocsSidebars, "tutorialSidebar")
	assert.Len(t, v.DocsSidebars["tutorialSidebar"], 2)
	assert.Equal(t, DocSummary{
		ID: "parallel-patterns", Title: "Parallel Patterns", Description: "Building blocks.", Sidebar: "tutorialSidebar",
	}, v.Docs["parallel-patterns"])

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"href":"/parallel-programming-essentials/docs/category/sycl-quickstart"`)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []notify.SnapshotSwapped
}

func (p *recordingPublisher) PublishSwap(_ context.Context, msg notify.SnapshotSwapped) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestStore_RebuildKeepsPreviousOnFailure(t *testing.T) {
	ctx := context.Background()
	opts := tutorialSite(t, tutorialSidebars)

	events, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })
	pub := &recordingPublisher{}

	store := NewStore(NewBuilder(opts), WithEvents(events), WithNotifier(pub))
	assert.Nil(t, store.Current())

	first, err := store.Rebuild(ctx, TriggerStartup)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Generation)
	assert.Same(t, first, store.Current())
	assert.NoError(t, store.LastError())

	require.NoError(t, os.WriteFile(opts.SidebarsFile, []byte("docs: [sycl/unknown]\n"), 0o600))
	_, err = store.Rebuild(ctx, TriggerWatch)
	require.ErrorIs(t, err, sidebar.ErrDanglingReference)
	assert.Same(t, first, store.Current())
	require.ErrorIs(t, store.LastError(), sidebar.ErrDanglingReference)

	require.NoError(t, os.WriteFile(opts.SidebarsFile, []byte(tutorialSidebars), 0o600))
	second, err := store.Rebuild(ctx, TriggerWatch)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Generation)
	assert.NoError(t, store.LastError())

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, second.BuildID, pub.msgs[1].BuildID)
	assert.Equal(t, uint64(2), pub.msgs[1].Generation)

	builds, err := eventstore.RecentBuilds(ctx, events, 0)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, eventstore.StatusSucceeded, builds[0].Status)
	assert.Equal(t, eventstore.StatusFailed, builds[1].Status)
	assert.Equal(t, string(ferrors.CategoryReference), builds[1].Category)
	assert.Equal(t, first.BuildID, builds[2].BuildID)
}

type failingBuilder struct{ err error }

func (f failingBuilder) Build(context.Context) (*Snapshot, error) { return nil, f.err }

func TestStore_FirstBuildFails(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(failingBuilder{err: boom})
	_, err := store.Rebuild(context.Background(), TriggerManual)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, store.Current())
	assert.Equal(t, "other", FailureKind(err))
}

func TestFailureKind(t *testing.T) {
	tests := map[error]string{
		sidebar.ErrCyclicSidebar:      "cycle",
		sidebar.ErrDuplicateReference: "duplicate",
		content.ErrDuplicateID:        "duplicate",
		content.ErrInvalidDocument:    "invalid",
	}
	for err, want := range tests {
		wrapped := ferrors.StructureError("wrapped").WithCause(err).Build()
		assert.Equal(t, want, FailureKind(wrapped), err.Error())
	}
}

func TestBuilder_UsesBuildIDFromContext(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-42")
	snap, err := NewBuilder(tutorialSite(t, tutorialSidebars)).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, "build-42", snap.BuildID)
}

type capturingBuilder struct {
	inner *Builder
	seen  string
}

func (c *capturingBuilder) Build(ctx context.Context) (*Snapshot, error) {
	c.seen, _ = BuildIDFrom(ctx)
	return c.inner.Build(ctx)
}

func TestStore_RebuildSharesBuildIDWithBuilder(t *testing.T) {
	b := &capturingBuilder{inner: NewBuilder(tutorialSite(t, tutorialSidebars))}
	snap, err := NewStore(b).Rebuild(context.Background(), TriggerManual)
	require.NoError(t, err)
	require.NotEmpty(t, b.seen)
	assert.Equal(t, b.seen, snap.BuildID)
}

func TestStore_FailureLogNamesOffendingDocument(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	boom := ferrors.ReferenceError("sidebar references an unknown document").
		WithContext("doc_id", "sycl/unknown").
		WithContext("file", "sidebars.yaml").
		Build()
	_, err := NewStore(failingBuilder{err: boom}).Rebuild(context.Background(), TriggerManual)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"doc_id":"sycl/unknown"`)
	assert.Contains(t, out, `"file":"sidebars.yaml"`)
}
