package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clintcan/lecturebench/internal/topology"
)

func TestAllocateClampS2(t *testing.T) {
	source := topology.Peer{Name: "S", MaxUpload: 10000}
	targets := []topology.Peer{
		{Name: "a", MaxDownload: 2000},
		{Name: "b", MaxDownload: 2000},
		{Name: "c", MaxDownload: 2000},
		{Name: "d", MaxDownload: 10000},
	}
	edges, err := Allocate(source, targets, map[string]topology.Edge{}, nil)
	require.NoError(t, err)

	byTarget := map[string]int{}
	sum := 0
	for _, e := range edges {
		byTarget[e.Target] = e.AllocatedBandwidth
		sum += e.AllocatedBandwidth
	}
	require.Equal(t, 2000, byTarget["a"])
	require.Equal(t, 2000, byTarget["b"])
	require.Equal(t, 2000, byTarget["c"])
	require.Equal(t, 4000, byTarget["d"])
	require.Equal(t, 10000, sum)
}

func TestAllocateClosureT1(t *testing.T) {
	source := topology.Peer{Name: "S", MaxUpload: 9999}
	targets := []topology.Peer{
		{Name: "a", MaxDownload: 500},
		{Name: "b", MaxDownload: 1500},
		{Name: "c", MaxDownload: 100000},
	}
	edges, err := Allocate(source, targets, map[string]topology.Edge{}, nil)
	require.NoError(t, err)

	sum := 0
	for _, e := range edges {
		sum += e.AllocatedBandwidth
		targetMax := map[string]int{"a": 500, "b": 1500, "c": 100000}[e.Target]
		require.LessOrEqual(t, e.AllocatedBandwidth, targetMax)
	}
	require.LessOrEqual(t, sum, source.MaxUpload)
}

func TestAllocateNoUplinkBudget(t *testing.T) {
	source := topology.Peer{Name: "S", MaxUpload: 0}
	_, err := Allocate(source, []topology.Peer{{Name: "a", MaxDownload: 100}}, nil, nil)
	require.Error(t, err)
}

func TestProjectTransferMS(t *testing.T) {
	ms := ProjectTransferMS(1_000_000, 8000)
	require.InDelta(t, 1000.0, ms, 1e-6)
}

func TestAllocatedEdgeJSONRoundTrip(t *testing.T) {
	a := AllocatedEdge{Source: "origin", Target: "1", AllocatedBandwidth: 9500, Latency: 65.70, Loss: 0.0024}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.Contains(t, string(data), `"latency":"65.70"`)
	require.Contains(t, string(data), `"loss":"0.0024"`)

	var back AllocatedEdge
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, a.Source, back.Source)
	require.InDelta(t, a.Latency, back.Latency, 1e-9)
	require.InDelta(t, a.Loss, back.Loss, 1e-9)
}
