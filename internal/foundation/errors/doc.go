// Package errors provides the classified error primitives used across docnav.
//
// Domain packages keep their own sentinel errors (content.ErrDuplicateID,
// sidebar.ErrDanglingReference, ...) and wrap them in a ClassifiedError so
// the CLI and HTTP layers can derive exit codes and status codes from the
// category while callers still match the sentinel with errors.Is.
//
//	err := errors.ReferenceError("sidebar item references unknown document").
//		WithContext("doc_id", id).
//		WithContext("path", path).
//		WithCause(sidebar.ErrDanglingReference).
//		Build()
package errors
