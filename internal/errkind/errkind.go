// Package errkind defines the sentinel error kinds shared across the
// harness. Callers compare with errors.Is; nothing here carries a payload
// beyond the static message, since per-occurrence detail (counts, names,
// measured values) belongs in the error that wraps these.
package errkind

import "errors"

// Design-time errors: surface and abort the run.
var (
	SamplerUnsatisfiable = errors.New("sampler: rejection loop exceeded bound")
	OverlayInvalid       = errors.New("planner: overlay mapping violates invariants")
	OverAllocation       = errors.New("planner: allocation exceeded source upload budget")
	NoUplinkBudget       = errors.New("planner: source has zero upload budget")
)

// Transient errors: absorbed by bounded retry.
var (
	BindRetry    = errors.New("orchestrator: listener bind attempt failed")
	ConnectRetry = errors.New("orchestrator: connection attempt failed")
)

// Validator errors.
var (
	ShapingDrift    = errors.New("validator: edge outside tolerance after retries")
	MissingArtifact = errors.New("validator: received artifact not found")
	HashMismatch    = errors.New("validator: received artifact hash mismatch")
)

// Run-level errors: reported with partial metrics.
var (
	BarrierIncomplete = errors.New("tracker: barrier deadline reached before all confirmations arrived")
	RunDeadline       = errors.New("orchestrator: run-wide deadline reached")
)
