package resultstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clintcan/lecturebench/internal/orchestrator"
	"github.com/clintcan/lecturebench/internal/validator"
)

func TestBuildRecordAggregatesStats(t *testing.T) {
	summary := validator.Summary{
		BandwidthErrorMin: 1, BandwidthErrorMean: 2, BandwidthErrorMax: 3,
		LatencyErrorMin: 0.5, LatencyErrorMean: 1.5, LatencyErrorMax: 2.5,
		Edges: []validator.EdgeResult{
			{Source: "origin", Target: "1", Measurement: validator.Measurement{Bandwidth: 5000}},
			{Source: "origin", Target: "2", Measurement: validator.Measurement{Bandwidth: 6000}},
		},
	}
	timings := []orchestrator.Timing{
		{ConnectionDuration: 100 * time.Millisecond, FileTransferDuration: 200 * time.Millisecond, TotalDuration: 300 * time.Millisecond},
		{ConnectionDuration: 150 * time.Millisecond, FileTransferDuration: 250 * time.Millisecond, TotalDuration: 400 * time.Millisecond},
	}

	r := BuildRecord("run-1", 2, "star", 1024, summary, timings, true)

	require.Equal(t, "run-1", r.RunID)
	require.Equal(t, 2, r.PeerCount)
	require.InDelta(t, 5000, r.Bandwidth.Min, 1e-9)
	require.InDelta(t, 6000, r.Bandwidth.Max, 1e-9)
	require.InDelta(t, 100, r.ConnectionTime.Min, 1e-9)
	require.InDelta(t, 400, r.TotalTime.Max, 1e-9)
	require.True(t, r.HashMatch)
}
