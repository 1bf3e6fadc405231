// Package content holds the document records of a documentation site.
//
// A Registry is populated once per build, in discovery order, and is then
// sealed. After sealing it is read-only and safe for concurrent readers; a
// rebuild creates a new Registry instead of mutating the old one.
package content
