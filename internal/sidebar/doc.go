// Package sidebar resolves declared sidebars against a content registry.
//
// A sidebar specification is an ordered list of Items (categories, links,
// doc shorthands and autogenerated directory listings). Build walks it
// depth-first, resolves every document reference, rejects cycles and
// documents listed twice, and produces an immutable Tree that answers
// previous/next and breadcrumb queries. Hand-authored order is
// authoritative; SidebarPosition only orders autogenerated listings.
package sidebar
