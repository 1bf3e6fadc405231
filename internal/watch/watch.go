// Package watch rebuilds the snapshot when documentation sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// DefaultDebounce is the quiet period before a burst of changes triggers a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Dir is watched recursively.
	Dir string
	// Files outside Dir that are watched individually (e.g. the sidebars file).
	Files []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// RebuildFunc performs one rebuild. Its error is logged, not propagated.
type RebuildFunc func(ctx context.Context) error

// Watcher turns filesystem events into serialized, debounced rebuilds.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	files    map[string]struct{}
	debounce time.Duration
	rebuild  RebuildFunc
	requests chan struct{}
}

// New starts watching opts.Dir and opts.Files. Call Run to process events.
func New(opts Options, rebuild RebuildFunc) (*Watcher, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		files:    make(map[string]struct{}),
		debounce: opts.Debounce,
		rebuild:  rebuild,
		requests: make(chan struct{}, 1),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if err := w.addDirsRecursive(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil || w.inDir(abs) {
			continue
		}
		w.files[abs] = struct{}{}
		// Editors replace files by rename, so watch the parent.
		if err := fsw.Add(filepath.Dir(abs)); err != nil {
			slog.Warn("watch add failed", logfields.Path(abs), logfields.Error(err))
		}
	}
	return w, nil
}

// Run processes events until ctx is canceled. At most one rebuild runs at a
// time and at most one more is queued behind it.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		wg.Wait()
	}()

	slog.Info("Watching for changes", logfields.Path(w.dir), logfields.Count(len(w.files)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.request)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			slog.Info("Change detected; rebuilding")
			if err := w.rebuild(ctx); err != nil {
				slog.Warn("rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || Ignored(ev.Name) {
		return false
	}
	if _, ok := w.files[ev.Name]; ok {
		return true
	}
	if !w.inDir(ev.Name) {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	return true
}

func (w *Watcher) inDir(path string) bool {
	return path == w.dir || strings.HasPrefix(path, w.dir+string(filepath.Separator))
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// Ignored reports whether changes to path never trigger a rebuild: hidden
// files, editor swap and backup files, and OS metadata files.
func Ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
