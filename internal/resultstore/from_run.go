package resultstore

import (
	"github.com/clintcan/lecturebench/internal/orchestrator"
	"github.com/clintcan/lecturebench/internal/validator"
)

// BuildRecord assembles a Result Record (spec.md §3) from a completed
// run's pieces: peer count and overlay, artifact size, the validator's
// aggregated edge statistics, and the per-endpoint connection/transfer/
// total timings collected by the orchestrator.
func BuildRecord(runID string, peerCount int, overlayKind string, artifactBytes int64, summary validator.Summary, timings []orchestrator.Timing, hashMatch bool) Record {
	r := Record{
		RunID:          runID,
		PeerCount:      peerCount,
		OverlayKind:    overlayKind,
		ArtifactBytes:  artifactBytes,
		LatencyError:   Stat{summary.LatencyErrorMin, summary.LatencyErrorMean, summary.LatencyErrorMax},
		BandwidthError: Stat{summary.BandwidthErrorMin, summary.BandwidthErrorMean, summary.BandwidthErrorMax},
		HashMatch:      hashMatch,
	}

	bw := make([]float64, 0, len(summary.Edges))
	for _, e := range summary.Edges {
		if e.Err == nil {
			bw = append(bw, e.Measurement.Bandwidth)
		}
	}
	if len(bw) > 0 {
		r.Bandwidth = statOf(bw)
	}

	if len(timings) > 0 {
		conn := make([]float64, len(timings))
		transfer := make([]float64, len(timings))
		total := make([]float64, len(timings))
		for i, t := range timings {
			conn[i] = t.ConnectionDuration.Seconds() * 1000
			transfer[i] = t.FileTransferDuration.Seconds() * 1000
			total[i] = t.TotalDuration.Seconds() * 1000
		}
		r.ConnectionTime = statOf(conn)
		r.TransferTime = statOf(transfer)
		r.TotalTime = statOf(total)
	}

	return r
}

func statOf(vs []float64) Stat {
	min, max := vs[0], vs[0]
	var sum float64
	for _, v := range vs {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return Stat{Min: min, Mean: sum / float64(len(vs)), Max: max}
}
