package git

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Commit is the last change of a file.
type Commit struct {
	At     time.Time
	Author string
}

// History maps files below a directory to their most recent commit.
type History struct {
	root    string
	entries map[string]Commit // repo-relative slash path -> last commit
}

// LoadHistory walks the history reachable from HEAD once and records, for
// every file under dir, the newest commit that added or modified it.
// A repository without commits yields an empty history.
func LoadHistory(dir string) (*History, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve directory").WithContext("path", dir).WithCause(err).Build()
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ferrors.NotFoundError("directory is not inside a git repository").
				WithContext("path", abs).
				WithCause(ErrNotRepository).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to open git repository").WithContext("path", abs).WithCause(err).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ferrors.FileSystemError("bare repositories are not supported").WithContext("path", abs).WithCause(err).Build()
	}

	h := &History{root: wt.Filesystem.Root(), entries: make(map[string]Commit)}
	prefix, err := filepath.Rel(h.root, abs)
	if err != nil {
		return nil, ferrors.InternalError("directory outside worktree").WithContext("path", abs).WithCause(err).Build()
	}
	prefix = filepath.ToSlash(prefix)

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return h, nil
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to resolve HEAD").WithContext("path", abs).WithCause(err).Build()
	}

	commits, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read git log").WithContext("path", abs).WithCause(err).Build()
	}
	defer commits.Close()

	count := 0
	err = commits.ForEach(func(c *object.Commit) error {
		count++
		tree, err := c.Tree()
		if err != nil {
			return err
		}
		var parent *object.Tree
		if c.NumParents() > 0 {
			p, err := c.Parent(0)
			if err != nil {
				return err
			}
			if parent, err = p.Tree(); err != nil {
				return err
			}
		}
		changes, err := object.DiffTree(parent, tree)
		if err != nil {
			return err
		}
		for _, ch := range changes {
			name := ch.To.Name
			if name == "" || !under(prefix, name) {
				continue
			}
			if _, seen := h.entries[name]; !seen {
				h.entries[name] = Commit{At: c.Author.When.UTC(), Author: c.Author.Name}
			}
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("failed to walk git history").WithContext("path", abs).WithCause(err).Build()
	}

	slog.Debug("Loaded git history", logfields.Path(abs), logfields.Count(len(h.entries)), slog.Int("commits", count))
	return h, nil
}

// LastUpdated returns the last commit touching the file at path.
func (h *History) LastUpdated(path string) (time.Time, string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, "", false
	}
	rel, err := filepath.Rel(h.root, abs)
	if err != nil {
		return time.Time{}, "", false
	}
	c, ok := h.entries[filepath.ToSlash(rel)]
	return c.At, c.Author, ok
}

// Len returns the number of files with history.
func (h *History) Len() int { return len(h.entries) }

func under(prefix, name string) bool {
	return prefix == "." || strings.HasPrefix(name, prefix+"/")
}
