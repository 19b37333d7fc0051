package fabric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConnectionValid(t *testing.T) {
	info, err := ParseConnection("p2p1:10.201.1.2,3:10.201.1.3")
	require.NoError(t, err)
	require.Equal(t, "p2p1", info.Iface)
	require.Equal(t, "10.201.1.2", info.LocalIP)
	require.Equal(t, "3", info.TargetName)
	require.Equal(t, "10.201.1.3", info.TargetIP)
}

func TestParseConnectionMalformed(t *testing.T) {
	cases := []string{
		"no-comma-here",
		"iface,10.0.0.1",
		"iface:10.0.0.1,target",
		":10.0.0.1,target:10.0.0.2",
	}
	for _, c := range cases {
		_, err := ParseConnection(c)
		require.Error(t, err, c)
	}
}

func TestEndpointEnvToEnviron(t *testing.T) {
	env := EndpointEnv{
		Role:       RoleSuperPeer,
		TotalPeers: 10,
		SourcePeer: "origin",
		IPAddress:  "10.200.0.5",
		Connections: []connection{
			{iface: "p2p1", localIP: "10.201.1.2", targetName: "3", targetIP: "10.201.1.3"},
		},
	}
	rendered := env.ToEnviron()
	require.Contains(t, rendered, "ROLE=superpeer")
	require.Contains(t, rendered, "TOTAL_PEERS=10")
	require.Contains(t, rendered, "SOURCE_PEER=origin")
	require.Contains(t, rendered, "TARGET_PEERS=3")
	require.Contains(t, rendered, "CONNECTION_1=p2p1:10.201.1.2,3:10.201.1.3")
}
