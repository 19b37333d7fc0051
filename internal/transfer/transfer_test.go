package transfer

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServeReceiveRoundTrip(t *testing.T) {
	artifact := NewArtifact([]byte("the quick brown fox jumps over the lazy dog"))

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	resultCh := make(chan ReceiveResult, 1)
	go func() {
		resultCh <- Receive(client, artifact.SHA256)
	}()

	require.NoError(t, Serve(server, artifact))
	result := <-resultCh
	require.NoError(t, result.Err)
	require.Equal(t, artifact.Data, result.Artifact.Data)
	require.Equal(t, artifact.SHA256, result.Artifact.SHA256)
}

func TestReceiveDetectsHashMismatch(t *testing.T) {
	artifact := NewArtifact([]byte("original content"))

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	resultCh := make(chan ReceiveResult, 1)
	go func() {
		resultCh <- Receive(client, "deadbeef")
	}()

	require.NoError(t, Serve(server, artifact))
	result := <-resultCh
	require.Error(t, result.Err)
}
