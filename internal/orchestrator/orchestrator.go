package orchestrator

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/lifecycle"
	"github.com/clintcan/lecturebench/internal/obslog"
	"github.com/clintcan/lecturebench/internal/retry"
	"github.com/clintcan/lecturebench/internal/tracker"
	"github.com/clintcan/lecturebench/internal/transfer"
)

// runDeadline is the run-wide deadline proportional to N, terminating the
// orchestrator per spec.md §5 ("Cancellation and timeouts").
func runDeadline(n int) time.Duration {
	d := time.Duration(n) * 2 * time.Second
	if d < 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// Orchestrator drives every endpoint's role handler and the tracker
// barrier for a single run.
type Orchestrator struct {
	Barrier  *tracker.Barrier
	Artifact transfer.Artifact
	Log      *zap.Logger

	timingsMu sync.Mutex
	timings   []Timing
}

// New builds an Orchestrator for a run expecting `expected` confirmations.
func New(expected int, artifact transfer.Artifact, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		Barrier:  tracker.NewBarrier(expected),
		Artifact: artifact,
		Log:      log,
	}
}

// Run starts every endpoint's role handler under a run-wide deadline and
// waits for the tracker barrier to complete. The per-endpoint goroutines
// run in an errgroup bound to a lifecycle.Manager's context, so a deadline
// or an endpoint failure cancels every one of them, and Run joins them all
// before returning.
func (o *Orchestrator) Run(ctx context.Context, endpoints []Endpoint, peerCount int) (tracker.Result, error) {
	deadline := runDeadline(peerCount)
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	mgr := lifecycle.New(runCtx)
	group, groupCtx := errgroup.WithContext(mgr.Context())

	for _, ep := range endpoints {
		ep := ep
		group.Go(func() error {
			return o.runEndpoint(groupCtx, ep)
		})
	}

	result, awaitErr := o.Barrier.Await(runCtx)

	groupErr := group.Wait()
	stopErr := mgr.StopWithTimeout(5 * time.Second)

	if awaitErr != nil {
		if runCtx.Err() != nil {
			return result, fmt.Errorf("%w: %v", errkind.RunDeadline, awaitErr)
		}
		return result, awaitErr
	}
	if groupErr != nil {
		return result, groupErr
	}
	if stopErr != nil {
		o.Log.Warn("orchestrator: goroutines did not exit within shutdown grace period", zap.Error(stopErr))
	}
	return result, nil
}

// Timings returns the per-receiver connection/transfer/total durations
// recorded by every relay and leaf endpoint that completed this run, for
// the Result Record's aggregated timing stats.
func (o *Orchestrator) Timings() []Timing {
	o.timingsMu.Lock()
	defer o.timingsMu.Unlock()
	out := make([]Timing, len(o.timings))
	copy(out, o.timings)
	return out
}

func (o *Orchestrator) recordTiming(t Timing) {
	o.timingsMu.Lock()
	o.timings = append(o.timings, t)
	o.timingsMu.Unlock()
}

// runEndpoint scopes ctx to a per-endpoint request ID before dispatching
// to the role handler, so every log line a single endpoint's goroutine
// emits across its connect/transfer/confirm lifetime can be grepped by
// one correlation ID even when many endpoints run concurrently.
func (o *Orchestrator) runEndpoint(ctx context.Context, ep Endpoint) error {
	ctx, log := obslog.WithEndpointLogger(ctx, o.Log, ep.Name)
	log.Debug("orchestrator: endpoint starting")

	switch cfg := ep.Config.(type) {
	case OriginConfig:
		return o.runOrigin(ctx, ep.Name, cfg, ep.TrackerAddr)
	case SuperPeerConfig:
		return o.runRelay(ctx, ep.Name, cfg.SourceAddr, cfg.ListenAddr, cfg.Targets, ep.TrackerAddr)
	case LeafConfig:
		return o.runLeaf(ctx, ep.Name, cfg.SourceAddr, ep.TrackerAddr)
	default:
		return fmt.Errorf("orchestrator: unknown role config for %s", ep.Name)
	}
}

// runOrigin binds the fixed listener, confirms once that bind succeeded
// (establishing the dissemination start-of-clock), and serves the
// artifact to every accepted connection.
func (o *Orchestrator) runOrigin(ctx context.Context, name string, cfg OriginConfig, trackerAddr string) error {
	ln, err := bindWithRetry(ctx, cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := tracker.SendConfirmation(ctx, trackerAddr); err != nil {
		return fmt.Errorf("orchestrator: origin %s confirm: %w", name, err)
	}

	return serveAll(ctx, ln, o.Artifact, len(cfg.Targets))
}

// runRelay connects to its upstream source, receives and verifies the
// artifact, confirms, then binds its own listener and serves its leaves.
func (o *Orchestrator) runRelay(ctx context.Context, name, sourceAddr, listenAddr string, targets []string, trackerAddr string) error {
	timing, err := receiveFromSource(ctx, sourceAddr, o.Artifact.SHA256)
	if err != nil {
		return fmt.Errorf("orchestrator: relay %s receive: %w", name, err)
	}
	o.recordTiming(timing)

	if err := tracker.SendConfirmation(ctx, trackerAddr); err != nil {
		return fmt.Errorf("orchestrator: relay %s confirm: %w", name, err)
	}

	ln, err := bindWithRetry(ctx, listenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	return serveAll(ctx, ln, o.Artifact, len(targets))
}

// runLeaf connects to its source, receives and verifies the artifact, and
// confirms.
func (o *Orchestrator) runLeaf(ctx context.Context, name, sourceAddr, trackerAddr string) error {
	timing, err := receiveFromSource(ctx, sourceAddr, o.Artifact.SHA256)
	if err != nil {
		return fmt.Errorf("orchestrator: leaf %s receive: %w", name, err)
	}
	o.recordTiming(timing)
	return tracker.SendConfirmation(ctx, trackerAddr)
}

// bindWithRetry implements the bounded-retry listener bind from spec.md
// §4.4.1.
func bindWithRetry(ctx context.Context, addr string) (net.Listener, error) {
	cfg := retry.Config{MaxAttempts: kMaxAttempts, Backoff: retry.Constant(kRetryInterval)}
	ln, err := retry.Do(ctx, cfg, func() (net.Listener, error) {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errkind.BindRetry, err)
		}
		return ln, nil
	})
	if err != nil {
		return nil, err
	}
	return ln, nil
}

// receiveAttempt is one dial-and-receive attempt's outcome, carrying enough
// to compute Timing once an attempt finally succeeds.
type receiveAttempt struct {
	connectionDuration time.Duration
	result             transfer.ReceiveResult
}

// receiveFromSource dials sourceAddr and receives the artifact over that
// connection as a single retried unit, so a peer that completes the TCP
// handshake but fails or closes mid-transfer counts as a failed attempt
// against the same kMaxAttempts budget as a dial failure (spec.md §4.4.1),
// rather than aborting the run on the first such failure.
func receiveFromSource(ctx context.Context, sourceAddr, expectedHash string) (Timing, error) {
	cfg := retry.Config{MaxAttempts: kMaxAttempts, Backoff: retry.Constant(kRetryInterval)}

	attempt, err := retry.Do(ctx, cfg, func() (receiveAttempt, error) {
		dialCtx, cancel := context.WithTimeout(ctx, kAttemptTimeout)
		defer cancel()
		var d net.Dialer
		conn, err := d.DialContext(dialCtx, "tcp", sourceAddr)
		if err != nil {
			return receiveAttempt{}, fmt.Errorf("%w: %v", errkind.ConnectRetry, err)
		}
		defer conn.Close()

		attemptStart := time.Now()
		result := transfer.Receive(conn, expectedHash)
		if result.Err != nil {
			return receiveAttempt{}, fmt.Errorf("%w: %v", errkind.ConnectRetry, result.Err)
		}
		return receiveAttempt{
			connectionDuration: time.Since(attemptStart) - result.FileTransferDuration,
			result:             result,
		}, nil
	})
	if err != nil {
		return Timing{}, err
	}

	return Timing{
		ConnectionDuration:   attempt.connectionDuration,
		FileTransferDuration: attempt.result.FileTransferDuration,
		TotalDuration:        attempt.connectionDuration + attempt.result.FileTransferDuration,
	}, nil
}

// serveAll accepts exactly `fanout` connections and serves the artifact to
// each, fanning out with errgroup so a failed relay write surfaces as a
// run failure instead of a silent gap.
func serveAll(ctx context.Context, ln net.Listener, artifact transfer.Artifact, fanout int) error {
	if fanout == 0 {
		return nil
	}
	group, _ := errgroup.WithContext(ctx)
	for i := 0; i < fanout; i++ {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("orchestrator: accept: %w", err)
		}
		group.Go(func() error {
			defer conn.Close()
			return transfer.Serve(conn, artifact)
		})
	}
	return group.Wait()
}
