package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/docs"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/git"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
)

// Options configures a Builder.
type Options struct {
	Discovery docs.Options
	Content   content.Options
	// SidebarsFile is the sidebar specification. When it does not exist every
	// document is listed in one autogenerated sidebar.
	SidebarsFile string
	// LastUpdated reads per-file author and time from git history.
	LastUpdated bool
	Recorder    metrics.Recorder
}

// OptionsFromConfig maps configuration onto builder options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Discovery: docs.Options{
			Dir:           cfg.DocsDir(),
			Extensions:    cfg.Docs.Extensions,
			IncludeDrafts: cfg.Docs.IncludeDrafts,
			EditURL:       cfg.Site.EditURL,
			TOC:           markdown.Options{TOCMinLevel: cfg.Docs.TOCMinLevel, TOCMaxLevel: cfg.Docs.TOCMaxLevel},
		},
		Content: content.Options{
			BasePath:    cfg.Site.BasePath,
			RoutePrefix: cfg.Site.RoutePrefix,
		},
		SidebarsFile: cfg.SidebarsFile(),
		LastUpdated:  cfg.Docs.LastUpdated,
	}
}

// Builder produces snapshots from a docs directory and a sidebar file.
type Builder struct {
	opts     Options
	recorder metrics.Recorder
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{opts: opts, recorder: rec}
}

// DefaultSpec lists every document in a single autogenerated sidebar.
func DefaultSpec() *sidebar.Spec {
	return &sidebar.Spec{Sidebars: []sidebar.Named{{
		Name:  sidebar.DefaultName,
		Items: []*sidebar.Item{sidebar.Autogenerated(".")},
	}}}
}

type buildIDKey struct{}

// WithBuildID returns a context that makes Build use id as the snapshot's
// build id instead of minting one.
func WithBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey{}, id)
}

// BuildIDFrom returns the build id carried by ctx.
func BuildIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(buildIDKey{}).(string)
	return id, ok && id != ""
}

// Build runs discovery, registration and sidebar resolution. It fails on the
// first error and returns no partial snapshot.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	buildID, ok := BuildIDFrom(ctx)
	if !ok {
		buildID = uuid.NewString()
	}
	log := slog.With(logfields.BuildID(buildID))

	dopts := b.opts.Discovery
	if b.opts.LastUpdated {
		if h := b.history(log); h != nil {
			dopts.LastUpdated = h
		}
	}

	start := time.Now()
	files, err := docs.NewDiscovery(dopts).Discover(ctx)
	if err != nil {
		return nil, err
	}
	b.recorder.ObserveStageDuration(metrics.StageDiscover, time.Since(start))

	start = time.Now()
	reg := content.NewRegistry(b.opts.Content)
	for _, f := range files {
		if _, err := reg.Register(f.Descriptor); err != nil {
			if ce, ok := ferrors.AsClassified(err); ok {
				return nil, ce.WithContext("file", f.RelativePath)
			}
			return nil, err
		}
	}
	reg.Seal()
	b.recorder.ObserveStageDuration(metrics.StageRegister, time.Since(start))
	warnBrokenLinks(log, files, dopts.Extensions)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	spec, raw, err := b.loadSidebars(log)
	if err != nil {
		return nil, err
	}
	set, err := sidebar.BuildSet(spec, reg)
	if err != nil {
		return nil, err
	}
	b.recorder.ObserveStageDuration(metrics.StageResolve, time.Since(start))

	snap := &Snapshot{
		BuildID:     buildID,
		BuiltAt:     time.Now().UTC(),
		Fingerprint: fingerprint(docs.ComputeDocsHash(files), raw),
		Registry:    reg,
		Sidebars:    set,
	}
	log.Debug("Snapshot built",
		logfields.Count(reg.Len()),
		slog.Int("listed", set.Len()),
		slog.Int("sidebars", len(set.Names())))
	return snap, nil
}

func (b *Builder) history(log *slog.Logger) *git.History {
	h, err := git.LoadHistory(b.opts.Discovery.Dir)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			log.Warn("last_updated is enabled but the docs directory is not in a git repository",
				logfields.Path(b.opts.Discovery.Dir))
			return nil
		}
		log.Warn("Failed to read git history", logfields.Error(err))
		return nil
	}
	return h
}

func (b *Builder) loadSidebars(log *slog.Logger) (*sidebar.Spec, []byte, error) {
	if b.opts.SidebarsFile == "" {
		return DefaultSpec(), nil, nil
	}
	raw, err := os.ReadFile(b.opts.SidebarsFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("No sidebar file; listing all documents", logfields.File(b.opts.SidebarsFile))
		return DefaultSpec(), nil, nil
	}
	if err != nil {
		return nil, nil, ferrors.FileSystemError("failed to read sidebar file").
			WithContext("file", b.opts.SidebarsFile).
			WithCause(err).
			Build()
	}
	spec, err := sidebar.Parse(raw)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, nil, ce.WithContext("file", b.opts.SidebarsFile)
		}
		return nil, nil, err
	}
	return spec, raw, nil
}

// warnBrokenLinks logs relative links to document files that were not discovered.
func warnBrokenLinks(log *slog.Logger, files []docs.DocFile, exts []string) {
	if len(exts) == 0 {
		exts = docs.DefaultExtensions
	}
	known := make(map[string]struct{}, len(files))
	for _, f := range files {
		known[f.RelativePath] = struct{}{}
	}
	for _, f := range files {
		dir := path.Dir(f.RelativePath)
		for _, l := range f.Links {
			target, ok := l.DocumentTarget(dir, exts)
			if !ok {
				continue
			}
			if _, found := known[target]; !found {
				log.Warn("Broken document link",
					logfields.File(f.RelativePath),
					slog.String("target", l.Destination))
			}
		}
	}
}

func fingerprint(docsHash string, sidebars []byte) string {
	h := sha256.New()
	h.Write([]byte(docsHash))
	h.Write([]byte{0})
	h.Write(sidebars)
	return hex.EncodeToString(h.Sum(nil))
}
