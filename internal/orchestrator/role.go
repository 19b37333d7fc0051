// Package orchestrator runs the origin sender, super-peer relay, and leaf
// receivers, and paces endpoint startup against fabric shaping readiness
// (spec.md §4.4).
package orchestrator

import "time"

// Role tags which of the three dissemination roles an endpoint plays.
// Design Note §9 ("role multiplexing"): a tagged variant over the role
// enum, each variant carrying its own configuration struct, replacing the
// source's nullable-peer polymorphism.
type Role int

const (
	RoleOrigin Role = iota
	RoleSuperPeer
	RoleLeaf
)

func (r Role) String() string {
	switch r {
	case RoleOrigin:
		return "origin"
	case RoleSuperPeer:
		return "superpeer"
	case RoleLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// RoleConfig is the per-role configuration carried by an Endpoint. Each
// role implements it with its own fields; no field is ever left nil/unset
// for a role that doesn't use it.
type RoleConfig interface {
	Role() Role
}

// OriginConfig configures the file source: it listens and serves every
// direct overlay successor.
type OriginConfig struct {
	ListenAddr string
	Targets    []string // overlay successor peer names, for logging/fanout sizing
}

func (OriginConfig) Role() Role { return RoleOrigin }

// SuperPeerConfig configures a relay: it receives from SourceAddr, then
// listens and serves its own leaves.
type SuperPeerConfig struct {
	SourceAddr string
	ListenAddr string
	Targets    []string
}

func (SuperPeerConfig) Role() Role { return RoleSuperPeer }

// LeafConfig configures a pure receiver.
type LeafConfig struct {
	SourceAddr string
}

func (LeafConfig) Role() Role { return RoleLeaf }

// Endpoint is one orchestrated endpoint: its name, its role configuration,
// and the tracker it must confirm to.
type Endpoint struct {
	Name        string
	Config      RoleConfig
	TrackerAddr string
}

// Timing constants for connection semantics (spec.md §4.4.1).
const (
	kMaxAttempts   = 2000
	kRetryInterval = 50 * time.Millisecond
	kAttemptTimeout = 30 * time.Second
)

// Timing is the three durations the receiver measures per spec.md §4.4.1.
type Timing struct {
	ConnectionDuration   time.Duration
	FileTransferDuration time.Duration
	TotalDuration        time.Duration
}
