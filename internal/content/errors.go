package content

import "errors"

var (
	// ErrDuplicateID indicates two documents share an id.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrDuplicatePermalink indicates two documents resolve to the same URL.
	ErrDuplicatePermalink = errors.New("duplicate document permalink")

	// ErrNotFound indicates a lookup of an id that is not registered.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidDocument indicates a descriptor missing required fields.
	ErrInvalidDocument = errors.New("invalid document descriptor")

	// ErrSealed indicates a registration attempt after the registry was sealed.
	ErrSealed = errors.New("registry is sealed")
)
