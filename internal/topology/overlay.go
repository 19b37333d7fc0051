package topology

import "github.com/clintcan/lecturebench/internal/errkind"

// OverlayVariant tags which dissemination shape an Overlay was built with.
// A tagged variant, not a boolean flag threaded through every call site,
// so each shape can carry its own validation rule.
type OverlayVariant int

const (
	Star OverlayVariant = iota
	TwoTier
)

func (v OverlayVariant) String() string {
	switch v {
	case Star:
		return "star"
	case TwoTier:
		return "two-tier"
	default:
		return "unknown"
	}
}

// OverlayLink is a single dissemination edge selected for actual transfer,
// carrying the super-peer flag needed by the fabric/orchestrator to decide
// a target's role.
type OverlayLink struct {
	Source      string
	Target      string
	TargetIsSP  bool
}

// Overlay is the subset of the full-mesh catalog actually used for
// dissemination.
type Overlay struct {
	Variant OverlayVariant
	Links   []OverlayLink
}

// BuildStar builds the star overlay: one edge (origin, p) for every
// non-origin peer, in catalog order.
func BuildStar(peers []Peer) Overlay {
	links := make([]OverlayLink, 0, len(peers)-1)
	for _, p := range peers {
		if p.IsOrigin() {
			continue
		}
		links = append(links, OverlayLink{Source: OriginName, Target: p.Name})
	}
	return Overlay{Variant: Star, Links: links}
}

// BuildTwoTier builds the two-tier overlay from a super-peer -> leaves
// mapping and an ordered list of super-peer names connected directly to
// origin. The caller (planner) is responsible for validating the mapping
// against the overlay invariants before calling this.
func BuildTwoTier(superPeers []string, leavesBySuperPeer map[string][]string) Overlay {
	links := make([]OverlayLink, 0, len(superPeers))
	for _, sp := range superPeers {
		links = append(links, OverlayLink{Source: OriginName, Target: sp, TargetIsSP: true})
	}
	for _, sp := range superPeers {
		for _, leaf := range leavesBySuperPeer[sp] {
			links = append(links, OverlayLink{Source: sp, Target: leaf})
		}
	}
	return Overlay{Variant: TwoTier, Links: links}
}

// TargetsOf returns the overlay targets of a given source, in link order —
// the fanout set K used by the planner's allocation pass.
func (o Overlay) TargetsOf(source string) []string {
	var targets []string
	for _, l := range o.Links {
		if l.Source == source {
			targets = append(targets, l.Target)
		}
	}
	return targets
}

// Sources returns the distinct set of overlay sources, in first-seen link
// order — every peer that must run an allocation pass.
func (o Overlay) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range o.Links {
		if !seen[l.Source] {
			seen[l.Source] = true
			out = append(out, l.Source)
		}
	}
	return out
}

// Validate checks the overlay invariants from the data model: every
// non-origin peer reachable from origin by exactly one path of length <= 2,
// and every super-peer has at least one leaf.
func (o Overlay) Validate(peers []Peer) error {
	reachers := make(map[string]int)
	spHasLeaf := make(map[string]bool)
	isSP := make(map[string]bool)
	for _, l := range o.Links {
		if l.TargetIsSP {
			if l.Source != OriginName {
				return errkind.OverlayInvalid
			}
			isSP[l.Target] = true
		}
	}
	for _, l := range o.Links {
		reachers[l.Target]++
		if l.Source != OriginName {
			if !isSP[l.Source] {
				return errkind.OverlayInvalid
			}
			spHasLeaf[l.Source] = true
		}
	}
	for _, p := range peers {
		if p.IsOrigin() {
			continue
		}
		if reachers[p.Name] != 1 {
			return errkind.OverlayInvalid
		}
	}
	for sp := range isSP {
		if !spHasLeaf[sp] {
			return errkind.OverlayInvalid
		}
	}
	return nil
}
