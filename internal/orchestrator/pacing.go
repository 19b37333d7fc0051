package orchestrator

import (
	"context"
	"time"

	"github.com/clintcan/lecturebench/internal/connectivity"
	"github.com/clintcan/lecturebench/internal/fabric"
)

// bindDelay implements the peer-count-dependent staircase from spec.md
// §4.4.3: the origin delays its listener bind to let fabric shaping
// settle before the first outbound connection is attempted.
func bindDelay(peerCount int) time.Duration {
	switch {
	case peerCount <= 6:
		return 50 * time.Second
	case peerCount <= 21:
		return 150 * time.Second
	case peerCount <= 51:
		return 400 * time.Second
	case peerCount <= 101:
		return 800 * time.Second
	case peerCount <= 151:
		return 1200 * time.Second
	default:
		return 1200 * time.Second
	}
}

// StartupPacer is the fallback pacing strategy for a runtime that cannot
// report shaping readiness: wait out the staircase delay, then confirm the
// origin is actually reachable before any endpoint attempts its first
// outbound connection.
type StartupPacer struct {
	Monitor *connectivity.Monitor
}

// NewStartupPacer builds a pacer probing originURL for liveness.
func NewStartupPacer(originURL string) *StartupPacer {
	return &StartupPacer{Monitor: connectivity.NewMonitor(&connectivity.Config{CheckURL: originURL}, nil)}
}

// Wait blocks for the staircase delay and then until the origin answers a
// liveness probe.
func (p *StartupPacer) Wait(ctx context.Context, peerCount int) error {
	delay := bindDelay(peerCount)
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.Monitor.WaitUntilOnline(ctx)
}

// ExplicitShapingBarrier is the implementer-preferred alternative named in
// spec.md §4.4.3's last sentence: instead of guessing a fixed delay, wait
// for every endpoint's shaping driver to explicitly ACK completion.
type ExplicitShapingBarrier struct {
	Shaper      fabric.ShapingDriver
	Endpoints   []fabric.Endpoint
}

// Wait blocks until every endpoint's shaping driver reports completion.
func (b *ExplicitShapingBarrier) Wait(ctx context.Context) error {
	for _, ep := range b.Endpoints {
		if err := b.Shaper.AwaitComplete(ctx, ep); err != nil {
			return err
		}
	}
	return nil
}
