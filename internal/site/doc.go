// Package site composes discovery, the content registry and the sidebar
// resolver into immutable snapshots, and swaps them atomically on rebuild.
package site
