// Package sampler draws synthetic per-peer network profiles from a
// categorical mixture of access technologies, each parameterized by
// truncated-to-positive normal distributions.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/topology"
)

// maxRejectionAttempts bounds the truncated-normal rejection loop; a
// technology whose draw can't clear zero within this many attempts is a
// configuration error, not a slow loop.
const maxRejectionAttempts = 10_000

// technology is one row of the fixed mixture table (spec.md §4.1), means
// and standard deviations in the source's native units (Mbit/s, ms,
// fraction).
type technology struct {
	name      string
	weight    float64 // cumulative upper bound of the [0,100) selector range
	upMean    float64
	upSigma   float64
	dnMean    float64
	dnSigma   float64
	latMean   float64
	latSigma  float64
	lossMean  float64
	lossSigma float64
}

// technologies is the fixed mixture: ADSL 77.30%, Cable 19.70%, FTTC 3.00%.
var technologies = []technology{
	{name: "adsl", weight: 77.30, upMean: 0.824, upSigma: 0.211, dnMean: 9.489, dnSigma: 5.812, latMean: 25.50, latSigma: 9.71, lossMean: 0.00197, lossSigma: 0.00475},
	{name: "cable", weight: 97.00, upMean: 18.612, upSigma: 11.386, dnMean: 211.76, dnSigma: 106.12, latMean: 17.64, latSigma: 2.34, lossMean: 0.00264, lossSigma: 0.01051},
	{name: "fttc", weight: 100.00, upMean: 13.753, upSigma: 5.233, dnMean: 52.61, dnSigma: 17.77, latMean: 12.96, latSigma: 5.47, lossMean: 0.00050, lossSigma: 0.00074},
}

// Origin profile bounds (spec.md §4.1): drawn from a separate uniform,
// not the technology mixture.
const (
	originUploadMin   = 25000
	originUploadMax   = 30000
	originDownloadMin = 78000
	originDownloadMax = 80000
	originLatency     = 40.20
	originLoss        = 0.0024
)

// Sampler draws peer profiles with a seeded RNG, the one intentionally
// non-deterministic component in the harness, reproducible given a seed.
type Sampler struct {
	rng *rand.Rand
	log *zap.Logger
}

// New builds a Sampler seeded explicitly for reproducibility.
func New(seed int64, log *zap.Logger) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed)), log: log}
}

// Draw produces n non-origin peer profiles plus the one origin profile.
// The origin peer is always first in the returned slice.
func (s *Sampler) Draw(n int) ([]topology.Peer, error) {
	peers := make([]topology.Peer, 0, n+1)
	peers = append(peers, s.drawOrigin())
	for i := 1; i <= n; i++ {
		p, err := s.drawPeer(fmt.Sprintf("%d", i))
		if err != nil {
			return nil, err
		}
		peers = append(peers, p)
	}
	return peers, nil
}

func (s *Sampler) drawOrigin() topology.Peer {
	up := originUploadMin + s.rng.Intn(originUploadMax-originUploadMin+1)
	dn := originDownloadMin + s.rng.Intn(originDownloadMax-originDownloadMin+1)
	return topology.Peer{
		Name:        topology.OriginName,
		MaxUpload:   up,
		MaxDownload: dn,
		Latency:     originLatency,
		Loss:        originLoss,
	}
}

func (s *Sampler) drawPeer(name string) (topology.Peer, error) {
	tech := s.selectTechnology()

	upMbit, err := s.truncatedPositive(tech.upMean, tech.upSigma)
	if err != nil {
		return topology.Peer{}, err
	}
	dnMbit, err := s.truncatedPositive(tech.dnMean, tech.dnSigma)
	if err != nil {
		return topology.Peer{}, err
	}
	lat, err := s.truncatedPositive(tech.latMean, tech.latSigma)
	if err != nil {
		return topology.Peer{}, err
	}
	loss, err := s.truncatedPositive(tech.lossMean, tech.lossSigma)
	if err != nil {
		return topology.Peer{}, err
	}

	s.log.Debug("drew peer profile", zap.String("peer", name), zap.String("tech", tech.name))

	return topology.Peer{
		Name:        name,
		MaxUpload:   roundKbit(upMbit),
		MaxDownload: roundKbit(dnMbit),
		Latency:     lat,
		Loss:        loss,
	}, nil
}

// selectTechnology performs a single uniform draw in [0,100) against the
// mixture's cumulative weight table.
func (s *Sampler) selectTechnology() technology {
	roll := s.rng.Float64() * 100
	for _, t := range technologies {
		if roll < t.weight {
			return t
		}
	}
	return technologies[len(technologies)-1]
}

// truncatedPositive rejection-samples a normal distribution until it draws
// a non-negative value, bounded by maxRejectionAttempts.
func (s *Sampler) truncatedPositive(mean, sigma float64) (float64, error) {
	dist := distuv.Normal{Mu: mean, Sigma: sigma, Src: s.rng}
	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		v := dist.Rand()
		if v >= 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: mean=%.4f sigma=%.4f", errkind.SamplerUnsatisfiable, mean, sigma)
}

// roundKbit converts Mbit/s to integer Kbit/s, rounding half-away-from-zero
// (Open Question 2, decided in DESIGN.md).
func roundKbit(mbit float64) int {
	kbit := mbit * 1000
	if kbit >= 0 {
		return int(math.Floor(kbit + 0.5))
	}
	return int(math.Ceil(kbit - 0.5))
}
