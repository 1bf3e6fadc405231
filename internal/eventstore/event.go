// Package eventstore keeps an append-only history of snapshot builds.
package eventstore

import (
	"encoding/json"
	"fmt"
	"time"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Event types.
const (
	TypeBuildStarted   = "build.started"
	TypeBuildSucceeded = "build.succeeded"
	TypeBuildFailed    = "build.failed"
)

// Event is one stored build event.
type Event struct {
	ID        int64           `json:"id"`
	BuildID   string          `json:"build_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// BuildPayload is the payload of build events. Fields irrelevant to an
// event type are omitted.
type BuildPayload struct {
	Trigger     string `json:"trigger,omitempty"`
	Generation  uint64 `json:"generation,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Documents   int    `json:"documents,omitempty"`
	Listed      int    `json:"listed,omitempty"`
	Sidebars    int    `json:"sidebars,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Error       string `json:"error,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Decode unmarshals the payload of a build event.
func (e Event) Decode() (BuildPayload, error) {
	var p BuildPayload
	if len(e.Payload) == 0 {
		return p, nil
	}
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

func newEvent(buildID, typ string, at time.Time, payload BuildPayload) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrMarshalPayloadFailed, err)
	}
	return Event{BuildID: buildID, Type: typ, Timestamp: at.UTC(), Payload: data}, nil
}

// NewBuildStarted records the start of a build and what triggered it.
func NewBuildStarted(buildID, trigger string, at time.Time) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, at, BuildPayload{Trigger: trigger})
}

// NewBuildSucceeded records a build whose snapshot was swapped in.
func NewBuildSucceeded(buildID string, at time.Time, payload BuildPayload) (Event, error) {
	return newEvent(buildID, TypeBuildSucceeded, at, payload)
}

// NewBuildFailed records a failed build. The category of a classified
// error is kept.
func NewBuildFailed(buildID string, at time.Time, duration time.Duration, buildErr error) (Event, error) {
	p := BuildPayload{DurationMS: duration.Milliseconds()}
	if buildErr != nil {
		p.Error = buildErr.Error()
		p.Category = string(ferrors.GetCategory(buildErr))
	}
	return newEvent(buildID, TypeBuildFailed, at, p)
}
