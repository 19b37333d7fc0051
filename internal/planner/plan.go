package planner

import (
	"fmt"
	"sort"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/topology"
)

// Partitioner is the external graph-partitioner collaborator named in
// spec.md §4.2.2: given peers and their capacities, it returns a mapping
// of super-peer name to its covered leaves, plus the ordered list of
// super-peers connected directly to origin.
type Partitioner interface {
	Partition(peers []topology.Peer) (leavesBySuperPeer map[string][]string, superPeers []string, err error)
}

// Plan is the Planner's complete output: the full-mesh catalog, the
// selected overlay, and the bandwidth-allocated edges actually enforced.
type Plan struct {
	Topology       topology.Topology
	Overlay        topology.Overlay
	AllocatedEdges []AllocatedEdge
}

// BuildPlan derives the catalog, selects an overlay (star, or two-tier via
// the supplied Partitioner), allocates bandwidth for every overlay source,
// and projects transfer time for the given file size.
func BuildPlan(peers []topology.Peer, usesTwoTier bool, partitioner Partitioner, fileBytes int64) (Plan, error) {
	t := topology.Build(peers)

	var overlay topology.Overlay
	if usesTwoTier {
		if partitioner == nil {
			partitioner = CapacityPartitioner{}
		}
		leaves, superPeers, err := partitioner.Partition(peers)
		if err != nil {
			return Plan{}, err
		}
		overlay = topology.BuildTwoTier(superPeers, leaves)
	} else {
		overlay = topology.BuildStar(peers)
	}
	if err := overlay.Validate(peers); err != nil {
		return Plan{}, err
	}

	peerByName := make(map[string]topology.Peer, len(peers))
	for _, p := range peers {
		peerByName[p.Name] = p
	}
	targetIsSP := make(map[string]bool)
	for _, l := range overlay.Links {
		if l.TargetIsSP {
			targetIsSP[l.Target] = true
		}
	}

	var allocated []AllocatedEdge
	for _, src := range overlay.Sources() {
		targetNames := overlay.TargetsOf(src)
		targets := make([]topology.Peer, 0, len(targetNames))
		edgesByTarget := make(map[string]topology.Edge, len(targetNames))
		for _, name := range targetNames {
			targets = append(targets, peerByName[name])
			edge, ok := t.EdgeByPair(src, name)
			if !ok {
				return Plan{}, fmt.Errorf("planner: no catalog edge for %s->%s", src, name)
			}
			edgesByTarget[name] = edge
		}
		edges, err := Allocate(peerByName[src], targets, edgesByTarget, targetIsSP)
		if err != nil {
			return Plan{}, err
		}
		for i := range edges {
			edges[i].ProjectedTransferMS = ProjectTransferMS(fileBytes, edges[i].AllocatedBandwidth)
		}
		allocated = append(allocated, edges...)
	}

	return Plan{Topology: t, Overlay: overlay, AllocatedEdges: allocated}, nil
}

// CapacityPartitioner is the reference Partitioner: it sorts super-peer
// candidates by descending upload capacity and leaves by descending
// download capacity, then assigns leaves round-robin across the top
// candidates with the most upload headroom: ceil(sqrt(N)) of them unless
// SuperPeerCount overrides, and never more than half the candidates. Grounded on
// internal/peers's sort-by-score selection shape.
type CapacityPartitioner struct {
	// SuperPeerCount overrides the default super-peer count (ceil(sqrt(N)))
	// when positive.
	SuperPeerCount int
}

func (c CapacityPartitioner) Partition(peers []topology.Peer) (map[string][]string, []string, error) {
	var candidates []topology.Peer
	var leaves []topology.Peer
	for _, p := range peers {
		if p.IsOrigin() {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: no non-origin peers to partition", errkind.OverlayInvalid)
	}

	if len(candidates) < 2 {
		return nil, nil, fmt.Errorf("%w: two-tier overlay needs at least 2 non-origin peers", errkind.OverlayInvalid)
	}

	count := c.SuperPeerCount
	if count <= 0 {
		count = isqrtCeil(len(candidates))
	}
	// Every super-peer must get at least one leaf (spec.md §3's overlay
	// invariant), so there can never be more super-peers than leaves:
	// clamp to floor(candidates/2), not just candidates-1. Without this,
	// e.g. 3 candidates round up to 2 super-peers and only 1 leaf, and
	// round-robin assignment leaves one super-peer with none.
	if maxCount := len(candidates) / 2; count > maxCount {
		count = maxCount
	}
	if count < 1 {
		count = 1
	}

	sorted := append([]topology.Peer(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxUpload > sorted[j].MaxUpload
	})
	superPeers := sorted[:count]
	leafCandidates := sorted[count:]
	leaves = leafCandidates

	superNames := make([]string, count)
	leavesBySP := make(map[string][]string, count)
	for i, sp := range superPeers {
		superNames[i] = sp.Name
		leavesBySP[sp.Name] = []string{}
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].MaxDownload > leaves[j].MaxDownload
	})
	for i, leaf := range leaves {
		sp := superNames[i%len(superNames)]
		leavesBySP[sp] = append(leavesBySP[sp], leaf.Name)
	}

	return leavesBySP, superNames, nil
}

func isqrtCeil(n int) int {
	if n <= 1 {
		return 1
	}
	r := 1
	for r*r < n {
		r++
	}
	return r
}
