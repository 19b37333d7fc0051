package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrawProducesOriginFirst(t *testing.T) {
	s := New(1, nil)
	peers, err := s.Draw(10)
	require.NoError(t, err)
	require.Len(t, peers, 11)
	require.True(t, peers[0].IsOrigin())
	require.GreaterOrEqual(t, peers[0].MaxUpload, originUploadMin)
	require.LessOrEqual(t, peers[0].MaxUpload, originUploadMax)
}

func TestDrawNonOriginPeersPositive(t *testing.T) {
	s := New(42, nil)
	peers, err := s.Draw(50)
	require.NoError(t, err)
	for _, p := range peers {
		if p.IsOrigin() {
			continue
		}
		require.Greater(t, p.MaxUpload, 0)
		require.Greater(t, p.MaxDownload, 0)
		require.GreaterOrEqual(t, p.Latency, 0.0)
		require.GreaterOrEqual(t, p.Loss, 0.0)
	}
}

func TestDrawReproducibleWithSeed(t *testing.T) {
	a, err := New(7, nil).Draw(20)
	require.NoError(t, err)
	b, err := New(7, nil).Draw(20)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRoundKbitHalfAwayFromZero(t *testing.T) {
	require.Equal(t, 12500, roundKbit(12.5))
	require.Equal(t, 1, roundKbit(0.0005))
	require.Equal(t, 0, roundKbit(0))
}

func TestSelectTechnologyStaysWithinMixture(t *testing.T) {
	s := New(3, nil)
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[s.selectTechnology().name]++
	}
	require.Greater(t, counts["adsl"], counts["fttc"])
}
