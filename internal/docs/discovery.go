// Package docs discovers Markdown documents on disk and turns them into
// content descriptors.
package docs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docnav/internal/content"
	derrors "git.home.luguber.info/inful/docnav/internal/docs/errors"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/frontmatter"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/markdown"
)

// DefaultExtensions are the document file extensions discovered when none
// are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// LastUpdater reports when a file last changed and who changed it.
type LastUpdater interface {
	LastUpdated(path string) (at time.Time, author string, ok bool)
}

// Options configures discovery.
type Options struct {
	// Dir is the docs directory on disk.
	Dir string
	// SiteDir names Dir in document sources ("@site/<SiteDir>/<rel>").
	// Defaults to the base name of Dir.
	SiteDir       string
	Extensions    []string
	IncludeDrafts bool
	// EditURL is the base URL for edit links; the relative path is appended.
	EditURL     string
	TOC         markdown.Options
	LastUpdated LastUpdater
}

// DocFile is a discovered document.
type DocFile struct {
	Path         string // absolute path
	RelativePath string // slash-separated, relative to the docs directory
	Descriptor   content.Descriptor
	Links        []markdown.Link
}

// Discovery walks a docs directory.
type Discovery struct {
	opts Options
}

// NewDiscovery creates a discovery for opts, filling defaults.
func NewDiscovery(opts Options) *Discovery {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.SiteDir == "" {
		opts.SiteDir = filepath.Base(filepath.Clean(opts.Dir))
	}
	if opts.TOC == (markdown.Options{}) {
		opts.TOC = markdown.DefaultOptions()
	}
	return &Discovery{opts: opts}
}

// Discover returns every document under the docs directory, sorted by
// relative path. Hidden and underscore-prefixed files and directories are
// skipped, as are drafts unless IncludeDrafts is set.
func (d *Discovery) Discover(ctx context.Context) ([]DocFile, error) {
	root, err := filepath.Abs(d.opts.Dir)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve docs directory").
			WithContext("path", d.opts.Dir).
			WithCause(err).
			Build()
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, ferrors.ConfigError("docs directory does not exist").
			WithContext("path", root).
			WithCause(derrors.ErrDocsPathNotFound).
			Build()
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == root {
			return nil
		}
		if skipped(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type().IsRegular() && d.isDocument(entry.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ferrors.FileSystemError("failed to walk docs directory").
			WithContext("path", root).
			WithCause(errors.Join(derrors.ErrDocsDirWalkFailed, err)).
			Build()
	}

	files := make([]DocFile, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil, ferrors.InternalError("relative path outside docs directory").
				WithContext("file", p).
				WithCause(err).
				Build()
		}
		df, keep, err := d.load(p, filepath.ToSlash(rel))
		if err != nil {
			return nil, err
		}
		if keep {
			files = append(files, df)
		}
	}
	slices.SortFunc(files, func(a, b DocFile) int { return strings.Compare(a.RelativePath, b.RelativePath) })

	slog.Debug("Discovered documents", logfields.Path(root), logfields.Count(len(files)))
	return files, nil
}

func (d *Discovery) isDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.opts.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func skipped(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// load reads one file. keep is false for skipped drafts.
func (d *Discovery) load(abs, rel string) (DocFile, bool, error) {
	raw, err := os.ReadFile(abs)
	if err != nil {
		return DocFile{}, false, ferrors.FileSystemError("failed to read document").
			WithContext("file", rel).
			WithCause(errors.Join(derrors.ErrFileReadFailed, err)).
			Build()
	}

	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return DocFile{}, false, invalidFrontMatter(rel, err)
	}
	meta, err := frontmatter.Decode(fm)
	if err != nil {
		return DocFile{}, false, invalidFrontMatter(rel, err)
	}
	if meta.Draft && !d.opts.IncludeDrafts {
		slog.Debug("Skipping draft document", logfields.File(rel))
		return DocFile{}, false, nil
	}

	id, err := documentID(rel, meta.ID)
	if err != nil {
		return DocFile{}, false, err
	}
	analysis := markdown.Analyze(body, d.opts.TOC)

	fingerprint, err := Fingerprint(meta.Fields, body)
	if err != nil {
		return DocFile{}, false, invalidFrontMatter(rel, err)
	}

	desc := content.Descriptor{
		ID:              id,
		Title:           firstNonEmpty(meta.Title, analysis.Title, strings.TrimSuffix(path.Base(rel), path.Ext(rel))),
		Description:     firstNonEmpty(meta.Description, analysis.Description),
		Slug:            meta.Slug,
		SidebarPosition: meta.SidebarPosition,
		SidebarLabel:    meta.SidebarLabel,
		Source:          "@site/" + path.Join(d.opts.SiteDir, rel),
		SourceDirName:   path.Dir(rel),
		Draft:           meta.Draft,
		Unlisted:        meta.Unlisted,
		Tags:            meta.Tags,
		TOC:             analysis.TOC,
		Fingerprint:     fingerprint,
		FrontMatter:     meta.Fields,
		PaginationPrev:  meta.PaginationPrev,
		PaginationNext:  meta.PaginationNext,
	}
	if d.opts.EditURL != "" {
		desc.EditURL = strings.TrimRight(d.opts.EditURL, "/") + "/" + rel
	}
	if d.opts.LastUpdated != nil {
		if at, author, ok := d.opts.LastUpdated.LastUpdated(abs); ok {
			desc.LastUpdatedAt = at
			desc.LastUpdatedBy = author
		}
	}

	return DocFile{Path: abs, RelativePath: rel, Descriptor: desc, Links: analysis.Links}, true, nil
}

// documentID derives the id from the relative path. A frontmatter id
// replaces the last path segment.
func documentID(rel, override string) (string, error) {
	id := strings.TrimSuffix(rel, path.Ext(rel))
	if override == "" {
		return id, nil
	}
	if strings.Contains(override, "/") {
		return "", ferrors.ValidationError("frontmatter id must not contain '/'").
			WithContext("file", rel).
			WithContext("doc_id", override).
			WithCause(derrors.ErrInvalidDocID).
			Build()
	}
	if dir := path.Dir(id); dir != "." {
		return dir + "/" + override, nil
	}
	return override, nil
}

func invalidFrontMatter(rel string, cause error) error {
	return ferrors.ValidationError("invalid frontmatter").
		WithContext("file", rel).
		WithContext("detail", cause.Error()).
		WithCause(derrors.ErrInvalidFrontMatter).
		Build()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Fingerprint computes the mdfp content fingerprint of a document. A stored
// fingerprint field does not contribute.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != mdfp.FingerprintField {
			forHash[k] = v
		}
	}
	serialized, err := frontmatter.Marshal(forHash)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), string(body)), nil
}
