// Package planner selects a dissemination overlay and allocates per-edge
// shaped bandwidth under per-source upload budgets.
package planner

import (
	"fmt"
	"math"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/topology"
)

// AllocatedEdge is a catalog edge actually used for dissemination,
// augmented with the bandwidth the planner allocated to it and the
// projected transfer time that allocation implies.
type AllocatedEdge struct {
	Source              string
	Target              string
	TargetIsSP          bool
	Latency             float64
	Loss                float64
	AllocatedBandwidth  int
	ProjectedTransferMS float64
}

// Allocate runs the two-pass fair-share algorithm (spec.md §4.2.3) for a
// single source peer across its overlay targets, preserving target order
// as the tie-break rule.
//
// Pass 1 clamps any target whose download ceiling is below the even
// share. Pass 2 redistributes the remaining budget evenly across whatever
// targets pass 1 left unassigned.
func Allocate(source topology.Peer, targets []topology.Peer, edgesByTarget map[string]topology.Edge, targetIsSP map[string]bool) ([]AllocatedEdge, error) {
	k := len(targets)
	if k == 0 {
		return nil, nil
	}
	if source.MaxUpload == 0 {
		return nil, fmt.Errorf("%w: source %s", errkind.NoUplinkBudget, source.Name)
	}

	share := source.MaxUpload / k // floor, integer division
	alloc := make(map[string]int, k)
	assigned := make(map[string]bool, k)

	remainingBudget := source.MaxUpload
	remainingTargets := k

	// Pass 1: clamp by sink.
	for _, t := range targets {
		if t.MaxDownload < share {
			alloc[t.Name] = t.MaxDownload
			assigned[t.Name] = true
			remainingBudget -= t.MaxDownload
			remainingTargets--
		}
	}

	// Pass 2: redistribute.
	for _, t := range targets {
		if assigned[t.Name] {
			continue
		}
		if remainingTargets == 0 {
			alloc[t.Name] = 0
			continue
		}
		even := remainingBudget / remainingTargets
		alloc[t.Name] = min(t.MaxDownload, even)
	}

	sum := 0
	for _, v := range alloc {
		sum += v
	}
	if sum > source.MaxUpload {
		return nil, fmt.Errorf("%w: source %s allocated %d of %d", errkind.OverAllocation, source.Name, sum, source.MaxUpload)
	}

	out := make([]AllocatedEdge, 0, k)
	for _, t := range targets {
		edge := edgesByTarget[t.Name]
		bw := alloc[t.Name]
		out = append(out, AllocatedEdge{
			Source:             source.Name,
			Target:             t.Name,
			TargetIsSP:         targetIsSP[t.Name],
			Latency:            edge.Latency,
			Loss:               edge.Loss,
			AllocatedBandwidth: bw,
		})
	}
	return out, nil
}

// ProjectTransferMS implements spec.md §4.2.4 exactly: the projected
// transfer time in milliseconds for fileBytes at the allocated kilobits
// per second. A zero or negative allocation has no finite projection and
// is reported as +Inf, letting the caller decide how to surface it.
func ProjectTransferMS(fileBytes int64, allocatedKbps int) float64 {
	if allocatedKbps <= 0 {
		return math.Inf(1)
	}
	return (float64(fileBytes) / 1000) / (float64(allocatedKbps) / 8) * 1000
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
