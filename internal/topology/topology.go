// Package topology holds the peer/edge/overlay data model and the pure
// derivation rule that turns a peer catalog into a full-mesh edge catalog.
package topology

import "sort"

// OriginName is the reserved peer name denoting the file source.
const OriginName = "origin"

// Peer is an immutable network profile produced by the sampler.
type Peer struct {
	Name        string
	MaxUpload   int // Kbit/s
	MaxDownload int // Kbit/s
	Latency     float64 // ms
	Loss        float64 // fraction in [0,1]
}

// IsOrigin reports whether this peer is the file source.
func (p Peer) IsOrigin() bool {
	return p.Name == OriginName
}

// Edge is a directed pair with theoretical (unallocated) capacity.
type Edge struct {
	Source    string
	Target    string
	Bandwidth int     // Kbit/s, min(source.MaxUpload, target.MaxDownload)
	Latency   float64 // ms, source.Latency + target.Latency
	Loss      float64 // fraction, max(source.Loss, target.Loss)
}

// Topology is an ordered peer catalog plus its full-mesh edge catalog.
type Topology struct {
	Peers []Peer
	Edges []Edge
}

// DeriveEdges builds the full-mesh edge catalog from a peer catalog: every
// ordered pair (A,B) with A != B gets exactly one edge, sorted by
// (source, target) for a stable listing.
func DeriveEdges(peers []Peer) []Edge {
	edges := make([]Edge, 0, len(peers)*(len(peers)-1))
	for _, src := range peers {
		for _, dst := range peers {
			if src.Name == dst.Name {
				continue
			}
			edges = append(edges, Edge{
				Source:    src.Name,
				Target:    dst.Name,
				Bandwidth: min(src.MaxUpload, dst.MaxDownload),
				Latency:   src.Latency + dst.Latency,
				Loss:      max(src.Loss, dst.Loss),
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// Build assembles a Topology from a peer catalog.
func Build(peers []Peer) Topology {
	return Topology{Peers: peers, Edges: DeriveEdges(peers)}
}

// EdgeByPair looks up the catalog edge for an ordered pair, grounding
// allocation and validation work in the theoretical-capacity edge.
func (t Topology) EdgeByPair(source, target string) (Edge, bool) {
	for _, e := range t.Edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
