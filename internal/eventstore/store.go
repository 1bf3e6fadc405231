package eventstore

import "context"

// Store persists and retrieves build events.
type Store interface {
	// Append adds an event. The stored ID is assigned by the store.
	Append(ctx context.Context, e Event) error

	// ForBuild returns the events of one build, oldest first.
	ForBuild(ctx context.Context, buildID string) ([]Event, error)

	// List returns up to limit events, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Event, error)

	// Close releases resources.
	Close() error
}
