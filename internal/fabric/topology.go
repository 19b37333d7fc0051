// Package fabric translates a Planner Plan into a declarative fabric
// description and materializes it through the Runtime and ShapingDriver
// collaborators.
package fabric

import (
	"fmt"

	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/topology"
)

// Topology mirrors the external YAML schema (spec.md §6) field for field.
type Topology struct {
	Name     string          `yaml:"name"`
	Prefix   string          `yaml:"prefix"`
	Mgmt     MgmtNetwork     `yaml:"mgmt"`
	Topo     TopoSection     `yaml:"topology"`
}

// MgmtNetwork is the fixed management /24 shared by every endpoint.
type MgmtNetwork struct {
	Network    string `yaml:"network"`
	IPv4Subnet string `yaml:"ipv4-subnet"`
}

// TopoSection holds the node set and the link set.
type TopoSection struct {
	Nodes map[string]Node `yaml:"nodes"`
	Links []Link          `yaml:"links"`
}

// Node is one endpoint: a container/namespace spec plus the environment it
// boots with.
type Node struct {
	Kind    string            `yaml:"kind"`
	Image   string            `yaml:"image"`
	MgmtIP4 string            `yaml:"mgmt-ipv4"`
	Env     map[string]string `yaml:"env"`
	Labels  map[string]string `yaml:"labels,omitempty"`
	Binds   []string          `yaml:"binds,omitempty"`
	Exec    []string          `yaml:"exec,omitempty"`
	Cmd     string            `yaml:"cmd,omitempty"`
	Ports   []string          `yaml:"ports,omitempty"`
}

// Link is one virtual point-to-point interface pairing, named
// "<id>:<iface>" on each end.
type Link struct {
	Endpoints [2]string `yaml:"endpoints"`
}

// Build assembles a fabric Topology from a Planner Plan: management IP
// allocation, per-link /24 subnets, environment variables, and the
// read-only connection-details bind.
func Build(name string, plan planner.Plan, image string) (*Topology, error) {
	alloc := newIPAllocator()

	nodes := make(map[string]Node, len(plan.Topology.Peers))
	links := make([]Link, 0, len(plan.Overlay.Links))

	peerByName := make(map[string]topology.Peer, len(plan.Topology.Peers))
	for _, p := range plan.Topology.Peers {
		peerByName[p.Name] = p
	}

	mgmtIP := make(map[string]string, len(plan.Topology.Peers))
	for _, p := range plan.Topology.Peers {
		mgmtIP[p.Name] = alloc.mgmtIP(p.Name)
	}

	targetIsSP := make(map[string]bool)
	superPeerOf := make(map[string]string)
	for _, l := range plan.Overlay.Links {
		if l.TargetIsSP {
			targetIsSP[l.Target] = true
		}
		if l.Source != topology.OriginName {
			superPeerOf[l.Target] = l.Source
		}
	}

	connsByPeer := make(map[string][]connection)
	for _, l := range plan.Overlay.Links {
		srcIface, srcIP, dstIface, dstIP, err := alloc.linkSubnet(l.Source, l.Target)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Endpoints: [2]string{
			fmt.Sprintf("%s:%s", l.Source, srcIface),
			fmt.Sprintf("%s:%s", l.Target, dstIface),
		}})
		connsByPeer[l.Source] = append(connsByPeer[l.Source], connection{
			iface: srcIface, localIP: srcIP, targetName: l.Target, targetIP: dstIP,
		})
	}

	for _, p := range plan.Topology.Peers {
		role := RoleLeaf
		switch {
		case p.IsOrigin():
			role = RoleOrigin
		case targetIsSP[p.Name]:
			role = RoleSuperPeer
		}

		env := EndpointEnv{
			Role:        role,
			TotalPeers:  len(plan.Topology.Peers) - 1,
			SourcePeer:  superPeerOf[p.Name],
			SuperPeer:   superPeerOf[p.Name],
			SuperPeerIP: mgmtIP[superPeerOf[p.Name]],
			IPAddress:   mgmtIP[p.Name],
			Connections: connsByPeer[p.Name],
		}
		if p.IsOrigin() {
			env.SourcePeer = ""
			env.SuperPeer = ""
			env.SuperPeerIP = ""
		}

		nodes[p.Name] = Node{
			Kind:    "container",
			Image:   image,
			MgmtIP4: mgmtIP[p.Name],
			Env:     envToMap(env),
			Binds:   []string{"/artifacts/connection-details.json:/app/connection-details.json:ro"},
			Cmd:     "/app/endpoint",
		}
	}

	return &Topology{
		Name:   name,
		Prefix: name,
		Mgmt: MgmtNetwork{
			Network:    name + "-mgmt",
			IPv4Subnet: alloc.mgmtSubnet,
		},
		Topo: TopoSection{Nodes: nodes, Links: links},
	}, nil
}

func envToMap(e EndpointEnv) map[string]string {
	out := map[string]string{}
	for _, kv := range e.ToEnviron() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				out[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return out
}
