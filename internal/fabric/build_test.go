package fabric

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/topology"
)

func TestBuildAssignsRolesAndIPs(t *testing.T) {
	peers := []topology.Peer{
		{Name: topology.OriginName, MaxUpload: 25000, MaxDownload: 78000},
		{Name: "1", MaxUpload: 800, MaxDownload: 9500},
		{Name: "2", MaxUpload: 800, MaxDownload: 9500},
	}
	plan, err := planner.BuildPlan(peers, false, nil, 1_000_000)
	require.NoError(t, err)

	topo, err := Build("test", plan, "lecturebench/endpoint:latest")
	require.NoError(t, err)

	require.Len(t, topo.Topo.Nodes, 3)
	require.Equal(t, "origin", topo.Topo.Nodes[topology.OriginName].Env["ROLE"])
	require.Equal(t, "leaf", topo.Topo.Nodes["1"].Env["ROLE"])
	require.Len(t, topo.Topo.Links, 2)
}
