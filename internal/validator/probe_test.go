package validator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProbeLatencyAndBandwidthRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go ServeProbe(ctx, ln)

	latency, err := ProbeLatency(ctx, ln.Addr().String())
	require.NoError(t, err)
	require.GreaterOrEqual(t, latency, 0.0)

	rate, err := ProbeBandwidth(ctx, ln.Addr().String(), 64*1024)
	require.NoError(t, err)
	require.Greater(t, rate, 0.0)
}

func TestBitRateKbps(t *testing.T) {
	rate := bitRateKbps(125_000, time.Second)
	require.InDelta(t, 1000.0, rate, 1e-6)
}

func TestTrimNewline(t *testing.T) {
	require.Equal(t, "42.5", trimNewline("42.5\r\n"))
	require.Equal(t, "42.5", trimNewline("42.5\n"))
}
