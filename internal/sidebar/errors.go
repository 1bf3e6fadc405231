package sidebar

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/content"
)

var (
	// ErrDanglingReference indicates a sidebar item referencing a document that is not registered.
	ErrDanglingReference = errors.New("sidebar references unknown document")

	// ErrCyclicSidebar indicates an item that is its own ancestor.
	ErrCyclicSidebar = errors.New("sidebar item is its own ancestor")

	// ErrDuplicateReference indicates a document reachable from two sidebar positions.
	ErrDuplicateReference = errors.New("document referenced more than once in sidebars")

	// ErrInvalidSidebar indicates a malformed sidebar specification.
	ErrInvalidSidebar = errors.New("invalid sidebar specification")

	// ErrUnlisted indicates a document that is registered but not reachable from
	// any sidebar. It matches content.ErrNotFound.
	ErrUnlisted = fmt.Errorf("%w: not reachable from any sidebar", content.ErrNotFound)
)
