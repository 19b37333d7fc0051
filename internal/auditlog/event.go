// Package auditlog provides a structured JSON audit trail for a harness
// run: error-kind events, barrier/validator outcomes, and run lifecycle
// markers, rotated and compressed as they accumulate.
package auditlog

import "time"

// EventType identifies what happened.
type EventType string

const (
	EventRunStarted        EventType = "run_started"
	EventRunCompleted       EventType = "run_completed"
	EventBarrierIncomplete EventType = "barrier_incomplete"
	EventRunDeadline       EventType = "run_deadline"
	EventShapingDrift      EventType = "shaping_drift"
	EventHashMismatch      EventType = "hash_mismatch"
	EventMissingArtifact   EventType = "missing_artifact"
	EventSamplerUnsatisfiable EventType = "sampler_unsatisfiable"
	EventOverlayInvalid    EventType = "overlay_invalid"
)

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"event_type"`
	RunID     string    `json:"run_id,omitempty"`
	Peer      string    `json:"peer,omitempty"`
	TestID    int64     `json:"test_id,omitempty"`
	PeerCount int       `json:"peer_count,omitempty"`
	DurationMs int64    `json:"duration_ms,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// NewRunStartedEvent marks the start of a run.
func NewRunStartedEvent(runID string, peerCount int) Event {
	return Event{Timestamp: time.Now(), EventType: EventRunStarted, RunID: runID, PeerCount: peerCount}
}

// NewRunCompletedEvent marks a run's terminal outcome.
func NewRunCompletedEvent(runID string, testID int64, durationMs int64) Event {
	return Event{Timestamp: time.Now(), EventType: EventRunCompleted, RunID: runID, TestID: testID, DurationMs: durationMs}
}

// NewBarrierIncompleteEvent records a run whose confirmation barrier hit
// its deadline.
func NewBarrierIncompleteEvent(runID string, detail string) Event {
	return Event{Timestamp: time.Now(), EventType: EventBarrierIncomplete, RunID: runID, Detail: detail}
}

// NewRunDeadlineEvent records a run terminated by its run-wide deadline.
func NewRunDeadlineEvent(runID string, detail string) Event {
	return Event{Timestamp: time.Now(), EventType: EventRunDeadline, RunID: runID, Detail: detail}
}

// NewShapingDriftEvent records an edge that drifted outside tolerance
// after every retry.
func NewShapingDriftEvent(runID, peer, detail string) Event {
	return Event{Timestamp: time.Now(), EventType: EventShapingDrift, RunID: runID, Peer: peer, Detail: detail}
}

// NewHashMismatchEvent records an artifact integrity failure.
func NewHashMismatchEvent(runID, peer string) Event {
	return Event{Timestamp: time.Now(), EventType: EventHashMismatch, RunID: runID, Peer: peer}
}

// NewMissingArtifactEvent records a peer with no candidate artifact path.
func NewMissingArtifactEvent(runID, peer string) Event {
	return Event{Timestamp: time.Now(), EventType: EventMissingArtifact, RunID: runID, Peer: peer}
}

// NewSamplerUnsatisfiableEvent records a design-time sampler failure.
func NewSamplerUnsatisfiableEvent(runID, detail string) Event {
	return Event{Timestamp: time.Now(), EventType: EventSamplerUnsatisfiable, RunID: runID, Detail: detail}
}

// NewOverlayInvalidEvent records a rejected overlay mapping.
func NewOverlayInvalidEvent(runID, detail string) Event {
	return Event{Timestamp: time.Now(), EventType: EventOverlayInvalid, RunID: runID, Detail: detail}
}
