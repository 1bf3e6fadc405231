package eventstore

import (
	"context"
	"slices"
	"time"
)

// Build statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// BuildSummary folds the events of one build.
type BuildSummary struct {
	BuildID     string     `json:"build_id"`
	Status      string     `json:"status"`
	Trigger     string     `json:"trigger,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMS  int64      `json:"duration_ms,omitempty"`
	Generation  uint64     `json:"generation,omitempty"`
	Documents   int        `json:"documents,omitempty"`
	Error       string     `json:"error,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// Summarize folds events (oldest first) into per-build summaries, in the
// order each build was first seen.
func Summarize(events []Event) []BuildSummary {
	index := make(map[string]int)
	var out []BuildSummary
	for _, e := range events {
		i, ok := index[e.BuildID]
		if !ok {
			i = len(out)
			index[e.BuildID] = i
			out = append(out, BuildSummary{BuildID: e.BuildID, Status: StatusRunning, StartedAt: e.Timestamp})
		}
		s := &out[i]
		p, err := e.Decode()
		if err != nil {
			continue
		}
		switch e.Type {
		case TypeBuildStarted:
			s.StartedAt = e.Timestamp
			s.Trigger = p.Trigger
		case TypeBuildSucceeded:
			s.complete(e.Timestamp, p)
			s.Status = StatusSucceeded
			s.Generation = p.Generation
			s.Documents = p.Documents
		case TypeBuildFailed:
			s.complete(e.Timestamp, p)
			s.Status = StatusFailed
			s.Error = p.Error
			s.Category = p.Category
		}
	}
	return out
}

func (s *BuildSummary) complete(at time.Time, p BuildPayload) {
	s.CompletedAt = &at
	s.DurationMS = p.DurationMS
}

// RecentBuilds summarizes the builds touched by the latest limit events,
// newest build first.
func RecentBuilds(ctx context.Context, s Store, limit int) ([]BuildSummary, error) {
	events, err := s.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(events)
	summaries := Summarize(events)
	slices.Reverse(summaries)
	return summaries, nil
}
