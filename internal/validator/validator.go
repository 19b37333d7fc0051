package validator

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/retry"
)

// maxConcurrentProbes bounds how many edges are probed at once — each
// probe holds a live TCP listener on the target endpoint, so unbounded
// fan-out isn't safe.
const maxConcurrentProbes = 8

// EdgeResult is one edge's validation outcome.
type EdgeResult struct {
	Source, Target string
	Measurement     Measurement
	Err             error
}

// Summary aggregates min/mean/max bandwidth and latency error across every
// probed edge (spec.md §4.5.3).
type Summary struct {
	BandwidthErrorMin, BandwidthErrorMean, BandwidthErrorMax float64
	LatencyErrorMin, LatencyErrorMean, LatencyErrorMax       float64
	Edges                                                    []EdgeResult
}

// ProbeFunc probes one allocated edge and returns its raw measurement.
type ProbeFunc func(ctx context.Context, edge planner.AllocatedEdge) (Measurement, error)

// AssessEdge runs a single edge's quality probe up to three times in total
// (spec.md §4.5.1 step 5), accepting as soon as both bounds are met and
// returning errkind.ShapingDrift once retries are exhausted.
func AssessEdge(ctx context.Context, edge planner.AllocatedEdge, probe ProbeFunc) (Measurement, error) {
	cfg := retry.Config{MaxAttempts: maxRetries, Backoff: retry.Constant(0)}
	return retry.Do(ctx, cfg, func() (Measurement, error) {
		m, err := probe(ctx, edge)
		if err != nil {
			return Measurement{}, err
		}
		m.BandwidthErrorPct = percentError(m.Bandwidth, float64(edge.AllocatedBandwidth))
		m.LatencyErrorPct = percentError(m.Latency, edge.Latency)

		if m.BandwidthErrorPct > bandwidthErrorTolerancePct {
			return Measurement{}, fmt.Errorf("validator: %s->%s bandwidth error %.2f%% exceeds %.2f%%", edge.Source, edge.Target, m.BandwidthErrorPct, bandwidthErrorTolerancePct)
		}
		tier := latencyTolerancePct(m.Bandwidth)
		if m.LatencyErrorPct > tier {
			return Measurement{}, fmt.Errorf("validator: %s->%s latency error %.2f%% exceeds tier %.2f%%", edge.Source, edge.Target, m.LatencyErrorPct, tier)
		}
		return m, nil
	})
}

// Validate probes every allocated edge, bounded to maxConcurrentProbes
// concurrent probes, and aggregates the result. A single drifting or
// unreachable edge never stops the others: every edge's outcome is
// collected, and their errors (if any) are combined with go.uber/multierr
// into the one error this function returns.
func Validate(ctx context.Context, edges []planner.AllocatedEdge, probe ProbeFunc, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sem := semaphore.NewWeighted(maxConcurrentProbes)
	results := make([]EdgeResult, len(edges))

	done := make(chan struct{}, len(edges))
	for i, edge := range edges {
		i, edge := i, edge
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = EdgeResult{Source: edge.Source, Target: edge.Target, Err: err}
			done <- struct{}{}
			continue
		}
		go func() {
			defer sem.Release(1)
			defer func() { done <- struct{}{} }()

			m, err := AssessEdge(ctx, edge, probe)
			if err != nil {
				err = fmt.Errorf("%w: %v", errkind.ShapingDrift, err)
				log.Warn("validator: edge failed quality assessment", zap.String("source", edge.Source), zap.String("target", edge.Target), zap.Error(err))
			}
			results[i] = EdgeResult{Source: edge.Source, Target: edge.Target, Measurement: m, Err: err}
		}()
	}
	for range edges {
		<-done
	}

	return summarize(results)
}

func summarize(results []EdgeResult) (Summary, error) {
	var combined error
	var bwErrs, latErrs []float64
	for _, r := range results {
		if r.Err != nil {
			combined = multierr.Append(combined, r.Err)
			continue
		}
		bwErrs = append(bwErrs, r.Measurement.BandwidthErrorPct)
		latErrs = append(latErrs, r.Measurement.LatencyErrorPct)
	}

	s := Summary{Edges: results}
	if len(bwErrs) > 0 {
		s.BandwidthErrorMin, s.BandwidthErrorMean, s.BandwidthErrorMax = minMeanMax(bwErrs)
		s.LatencyErrorMin, s.LatencyErrorMean, s.LatencyErrorMax = minMeanMax(latErrs)
	}
	return s, combined
}

func minMeanMax(vs []float64) (min, mean, max float64) {
	min, max = vs[0], vs[0]
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
	return min, sum / float64(len(vs)), max
}

