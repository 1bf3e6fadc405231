package site

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/notify"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
)

// Build triggers recorded in the event log.
const (
	TriggerStartup  = "startup"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// SnapshotBuilder produces a fresh snapshot.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*Snapshot, error)
}

// Store owns the snapshot in service. Readers call Current and never block;
// Rebuild swaps in a new snapshot only when the build succeeds.
type Store struct {
	builder  SnapshotBuilder
	current  atomic.Pointer[Snapshot]
	mu       sync.Mutex // serializes Rebuild
	gen      uint64
	lastErr  atomic.Pointer[buildError]
	recorder metrics.Recorder
	events   eventstore.Store
	notifier notify.Publisher
}

type buildError struct{ err error }

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRecorder reports build metrics to rec.
func WithRecorder(rec metrics.Recorder) StoreOption {
	return func(s *Store) { s.recorder = rec }
}

// WithEvents records build events in es.
func WithEvents(es eventstore.Store) StoreOption {
	return func(s *Store) { s.events = es }
}

// WithNotifier announces every swap through p.
func WithNotifier(p notify.Publisher) StoreOption {
	return func(s *Store) { s.notifier = p }
}

// NewStore creates a store with no snapshot. Call Rebuild to load one.
func NewStore(b SnapshotBuilder, opts ...StoreOption) *Store {
	s := &Store{builder: b, recorder: metrics.NoopRecorder{}, notifier: notify.NoopPublisher{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Current returns the snapshot in service, or nil before the first
// successful build.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// LastError returns the error of the latest build, nil when it succeeded.
func (s *Store) LastError() error {
	if be := s.lastErr.Load(); be != nil {
		return be.err
	}
	return nil
}

// Rebuild builds a new snapshot and swaps it in. On failure the previous
// snapshot stays in service and the error is returned.
func (s *Store) Rebuild(ctx context.Context, trigger string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buildID := uuid.NewString()
	log := slog.With(logfields.BuildID(buildID), slog.String("trigger", trigger))
	s.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(buildID, trigger, time.Now())
	})

	start := time.Now()
	snap, err := s.builder.Build(WithBuildID(ctx, buildID))
	elapsed := time.Since(start)
	s.recorder.ObserveBuildDuration(elapsed)

	if err != nil {
		s.lastErr.Store(&buildError{err: err})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.recorder.IncBuildOutcome(metrics.ResultCanceled)
		} else {
			s.recorder.IncBuildOutcome(metrics.ResultFailed)
			s.recorder.IncResolutionFailure(FailureKind(err))
		}
		s.record(ctx, func() (eventstore.Event, error) {
			return eventstore.NewBuildFailed(buildID, time.Now(), elapsed, err)
		})
		log.Error("Build failed; keeping previous snapshot", failureAttrs(err, elapsed)...)
		return nil, err
	}

	s.gen++
	snap.BuildID = buildID
	snap.Generation = s.gen
	s.current.Store(snap)
	s.lastErr.Store(nil)

	listed := snap.Sidebars.Len()
	s.recorder.IncBuildOutcome(metrics.ResultSuccess)
	s.recorder.SetDocuments(snap.Registry.Len(), listed)
	s.recorder.SetGeneration(snap.Generation)
	s.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildSucceeded(buildID, time.Now(), eventstore.BuildPayload{
			Generation:  snap.Generation,
			Fingerprint: snap.Fingerprint,
			Documents:   snap.Registry.Len(),
			Listed:      listed,
			Sidebars:    len(snap.Sidebars.Names()),
			DurationMS:  elapsed.Milliseconds(),
		})
	})
	if err := s.notifier.PublishSwap(ctx, notify.SnapshotSwapped{
		BuildID:     buildID,
		Generation:  snap.Generation,
		Fingerprint: snap.Fingerprint,
		Documents:   snap.Registry.Len(),
	}); err != nil {
		log.Warn("Failed to announce snapshot", logfields.Error(err))
	}

	log.Info("Snapshot swapped",
		logfields.Generation(snap.Generation),
		logfields.Count(snap.Registry.Len()),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return snap, nil
}

// failureAttrs adds the offending document or file of a classified build
// error to the failure log line.
func failureAttrs(err error, elapsed time.Duration) []any {
	attrs := []any{logfields.DurationMS(float64(elapsed.Milliseconds())), logfields.Error(err)}
	if id := ferrors.ContextString(err, logfields.KeyDocID); id != "" {
		attrs = append(attrs, logfields.DocID(id))
	}
	if file := ferrors.ContextString(err, logfields.KeyFile); file != "" {
		attrs = append(attrs, logfields.File(file))
	}
	return attrs
}

func (s *Store) record(ctx context.Context, mk func() (eventstore.Event, error)) {
	if s.events == nil {
		return
	}
	e, err := mk()
	if err == nil {
		err = s.events.Append(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		slog.Warn("Failed to record build event", logfields.Error(err))
	}
}

// Events returns the event store, nil when build events are not recorded.
func (s *Store) Events() eventstore.Store { return s.events }

// FailureKind classifies a build error for metrics.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, sidebar.ErrDanglingReference):
		return "dangling"
	case errors.Is(err, sidebar.ErrCyclicSidebar):
		return "cycle"
	case errors.Is(err, sidebar.ErrDuplicateReference),
		errors.Is(err, content.ErrDuplicateID),
		errors.Is(err, content.ErrDuplicatePermalink):
		return "duplicate"
	case errors.Is(err, sidebar.ErrInvalidSidebar),
		errors.Is(err, content.ErrInvalidDocument):
		return "invalid"
	default:
		return "other"
	}
}
