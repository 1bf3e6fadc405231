// Package errors provides sentinel errors for documentation discovery.
// They are wrapped as causes of classified errors so callers can match them
// with errors.Is.
package errors

import "errors"

var (
	// ErrDocsPathNotFound indicates the configured docs directory does not exist.
	ErrDocsPathNotFound = errors.New("documentation path not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the docs directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading a discovered documentation file failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidFrontMatter indicates a document whose frontmatter cannot be parsed.
	ErrInvalidFrontMatter = errors.New("invalid document frontmatter")

	// ErrInvalidDocID indicates a frontmatter id that cannot name a document.
	ErrInvalidDocID = errors.New("invalid document id in frontmatter")
)
