package fabric

import (
	"fmt"
	"strconv"
	"strings"
)

// Role tags which of the three dissemination roles an endpoint plays
// (Design Note: tagged variant, replacing the source's nullable-peer
// polymorphism).
type Role string

const (
	RoleOrigin    Role = "origin"
	RoleSuperPeer Role = "superpeer"
	RoleLeaf      Role = "leaf"
)

// connection is one outbound overlay edge from this endpoint's point of
// view, the pre-parse form of a CONNECTION_<i> environment entry.
type connection struct {
	iface      string
	localIP    string
	targetName string
	targetIP   string
}

// EndpointEnv is the full set of environment variables an endpoint boots
// with (spec.md §6).
type EndpointEnv struct {
	Role        Role
	TotalPeers  int
	SourcePeer  string
	SuperPeer   string
	SuperPeerIP string
	IPAddress   string
	Connections []connection
}

// ToEnviron renders the environment as "KEY=value" pairs, in the exact
// schema order, including one CONNECTION_<i> per outbound overlay edge.
func (e EndpointEnv) ToEnviron() []string {
	env := []string{
		"ROLE=" + string(e.Role),
		"TOTAL_PEERS=" + strconv.Itoa(e.TotalPeers),
	}
	if e.SourcePeer != "" {
		env = append(env, "SOURCE_PEER="+e.SourcePeer)
	}
	if e.SuperPeer != "" {
		env = append(env, "SUPER_PEER="+e.SuperPeer)
	}
	if e.SuperPeerIP != "" {
		env = append(env, "SUPER_PEER_IP="+e.SuperPeerIP)
	}
	env = append(env, "IP_ADDRESS="+e.IPAddress)

	if len(e.Connections) > 0 {
		targets := make([]string, len(e.Connections))
		for i, c := range e.Connections {
			targets[i] = c.targetName
		}
		env = append(env, "TARGET_PEERS="+strings.Join(targets, ","))
	}
	for i, c := range e.Connections {
		env = append(env, fmt.Sprintf("CONNECTION_%d=%s:%s,%s:%s", i+1, c.iface, c.localIP, c.targetName, c.targetIP))
	}
	return env
}

// ConnectionInfo is the explicit, validated record a CONNECTION_<i>
// environment entry decodes to (Design Note: replaces duck-typed
// string-split parsing with an explicit record and explicit error).
type ConnectionInfo struct {
	Iface      string
	LocalIP    string
	TargetName string
	TargetIP   string
}

// ParseConnection parses a single "iface:localIp,target:targetIp" value.
// A malformed value is always an error; it never propagates silently.
func ParseConnection(s string) (ConnectionInfo, error) {
	halves := strings.SplitN(s, ",", 2)
	if len(halves) != 2 {
		return ConnectionInfo{}, fmt.Errorf("fabric: malformed connection %q: expected one comma", s)
	}
	localPart := strings.SplitN(halves[0], ":", 2)
	if len(localPart) != 2 {
		return ConnectionInfo{}, fmt.Errorf("fabric: malformed connection %q: expected iface:localIp", s)
	}
	targetPart := strings.SplitN(halves[1], ":", 2)
	if len(targetPart) != 2 {
		return ConnectionInfo{}, fmt.Errorf("fabric: malformed connection %q: expected target:targetIp", s)
	}
	info := ConnectionInfo{
		Iface:      localPart[0],
		LocalIP:    localPart[1],
		TargetName: targetPart[0],
		TargetIP:   targetPart[1],
	}
	if info.Iface == "" || info.LocalIP == "" || info.TargetName == "" || info.TargetIP == "" {
		return ConnectionInfo{}, fmt.Errorf("fabric: malformed connection %q: empty field", s)
	}
	return info, nil
}
