package git

import "errors"

// ErrNotRepository indicates the docs directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")
