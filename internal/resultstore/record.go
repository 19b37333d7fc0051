// Package resultstore persists per-run Result Records to an append-only
// CSV (spec.md §3, §6) plus a queryable sqlite history index used for
// enrichment by the report subcommand.
package resultstore

import "time"

// Stat is a min/mean/max triple, used for every aggregated field in a
// Result Record.
type Stat struct {
	Min, Mean, Max float64
}

// Record is one row of the Result Record (spec.md §3): a run's peer count,
// overlay variant, artifact size, and the aggregated bandwidth/error/timing
// statistics across every overlay edge.
type Record struct {
	TestID        int64
	RunID         string
	StartedAt     time.Time
	PeerCount     int
	OverlayKind   string
	ArtifactBytes int64

	Bandwidth       Stat
	LatencyError    Stat
	BandwidthError  Stat
	ConnectionTime  Stat
	TransferTime    Stat
	TotalTime       Stat

	HashMatch bool
}

var csvHeader = []string{
	"testId", "runId", "startedAt", "peerCount", "overlay", "artifactBytes",
	"bandwidthMin", "bandwidthAvg", "bandwidthMax",
	"latencyErrorMin", "latencyErrorAvg", "latencyErrorMax",
	"bandwidthErrorMin", "bandwidthErrorAvg", "bandwidthErrorMax",
	"connectionTimeMin", "connectionTimeAvg", "connectionTimeMax",
	"transferTimeMin", "transferTimeAvg", "transferTimeMax",
	"totalTimeMin", "totalTimeAvg", "totalTimeMax",
	"hashMatch",
}
