package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultNotFound ResultLabel = "not_found"
	ResultCanceled ResultLabel = "canceled"
)

// Build stages.
const (
	StageDiscover = "discover"
	StageRegister = "register"
	StageResolve  = "resolve"
)

// Recorder defines observability hooks for builds and navigation queries.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(result ResultLabel)
	// IncResolutionFailure counts failed builds by cause: dangling, cycle,
	// duplicate, invalid or other.
	IncResolutionFailure(kind string)
	SetDocuments(registered, listed int)
	SetGeneration(gen uint64)
	IncQuery(op string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(ResultLabel)                {}
func (NoopRecorder) IncResolutionFailure(string)                {}
func (NoopRecorder) SetDocuments(int, int)                      {}
func (NoopRecorder) SetGeneration(uint64)                       {}
func (NoopRecorder) IncQuery(string, ResultLabel)               {}
