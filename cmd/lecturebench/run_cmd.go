package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clintcan/lecturebench/internal/auditlog"
	"github.com/clintcan/lecturebench/internal/config"
	"github.com/clintcan/lecturebench/internal/dashboard"
	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/fabric"
	"github.com/clintcan/lecturebench/internal/metrics"
	"github.com/clintcan/lecturebench/internal/obslog"
	"github.com/clintcan/lecturebench/internal/orchestrator"
	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/resultstore"
	"github.com/clintcan/lecturebench/internal/sampler"
	"github.com/clintcan/lecturebench/internal/topology"
	"github.com/clintcan/lecturebench/internal/tracker"
	"github.com/clintcan/lecturebench/internal/transfer"
	"github.com/clintcan/lecturebench/internal/validator"
)

var (
	runBasePort int
	runServe    bool
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample, plan, realize, disseminate, and validate a single run",
		RunE:  runRun,
	}
	cmd.Flags().IntVar(&runBasePort, "base-port", 20000, "first loopback port used for endpoint/tracker listeners")
	cmd.Flags().BoolVar(&runServe, "serve", false, "serve Prometheus metrics and the run-status dashboard for the run's duration")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger()
	if err != nil {
		return configError{fmt.Errorf("setting up logger: %w", err)}
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("run: received shutdown signal")
		cancel()
	}()

	runID := resultstore.NewRunID()
	status := newRunStatus(runID)

	m := metrics.New()
	dash := dashboard.New(status.snapshot)
	if runServe {
		addr := fmt.Sprintf("%s:%d", cfg.Metrics.Bind, cfg.Metrics.Port)
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.Handle("/", dash.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("run: status server exited", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("run: serving metrics and dashboard", zap.String("addr", addr))
	}

	audit, err := auditlog.NewJSONWriter(auditlog.JSONWriterConfig{Path: cfg.Output.AuditPath})
	if err != nil {
		return fmt.Errorf("run: opening audit log: %w", err)
	}
	defer audit.Close()
	audit.Log(auditlog.NewRunStartedEvent(runID, cfg.Sampler.PeerCount))

	store, err := resultstore.Open(cfg.Output.ResultsDir)
	if err != nil {
		return fmt.Errorf("run: opening result store: %w", err)
	}
	defer store.Close()

	status.setPhase("sampling")
	peers, err := sampler.New(cfg.Sampler.Seed, logger).Draw(cfg.Sampler.PeerCount)
	if err != nil {
		audit.Log(auditlog.NewSamplerUnsatisfiableEvent(runID, err.Error()))
		return err
	}

	artifact, err := loadArtifact(cfg)
	if err != nil {
		return configError{err}
	}

	status.setPhase("planning")
	var partitioner planner.Partitioner
	if cfg.Topology.SuperPeerCount > 0 {
		partitioner = planner.CapacityPartitioner{SuperPeerCount: cfg.Topology.SuperPeerCount}
	}
	plan, err := planner.BuildPlan(peers, cfg.Topology.UsesTwoTier, partitioner, artifact.Size)
	if err != nil {
		audit.Log(auditlog.NewOverlayInvalidEvent(runID, err.Error()))
		return err
	}
	status.setPeerCount(len(peers))
	status.setOverlayKind(plan.Overlay.Variant.String())

	topo, err := fabric.Build(runID, plan, "lecturebench-endpoint")
	if err != nil {
		return err
	}

	status.setPhase("building")
	rules := shapingRules(plan, topo)
	builder := &fabric.Builder{Runtime: fabric.NewLocalRuntime(), Shaper: fabric.NewRateLimitShaper()}
	endpoints, err := builder.Realize(ctx, topo, rules)
	if err != nil {
		logger.Warn("run: fabric realize reported partial failures", zap.Error(err))
	}
	defer func() {
		if err := builder.Teardown(ctx); err != nil {
			logger.Warn("run: fabric teardown failed", zap.Error(err))
		}
	}()

	shaper := builder.Shaper
	shapingBarrier := &orchestrator.ExplicitShapingBarrier{Shaper: shaper, Endpoints: endpoints}
	if err := shapingBarrier.Wait(ctx); err != nil {
		return fmt.Errorf("run: waiting for shaping readiness: %w", err)
	}

	addrs := allocateAddrs(plan.Topology.Peers, runBasePort)
	trackerAddr := fmt.Sprintf("127.0.0.1:%d", runBasePort+len(peers)*2)

	status.setPhase("transferring")
	orch := orchestrator.New(len(peers), artifact, logger)

	trackerLn, err := net.Listen("tcp", trackerAddr)
	if err != nil {
		return fmt.Errorf("run: binding tracker listener: %w", err)
	}
	go func() {
		if err := listenTracker(ctx, trackerLn, orch); err != nil {
			logger.Warn("run: tracker listener exited", zap.Error(err))
		}
	}()

	probeListeners, err := startProbeListeners(ctx, plan.Topology.Peers, addrs.probe)
	if err != nil {
		return fmt.Errorf("run: starting validator probe listeners: %w", err)
	}
	defer closeAll(probeListeners)

	orchEndpoints := buildEndpoints(plan, addrs.transfer, trackerAddr)

	result, runErr := orch.Run(ctx, orchEndpoints, len(peers))
	m.ConfirmationsTotal.Add(float64(result.Count))
	hashMatch := runErr == nil

	if runErr != nil {
		logger.Warn("run: dissemination did not complete cleanly", zap.Error(runErr))
		switch {
		case errors.Is(runErr, errkind.RunDeadline):
			m.RunDeadlineHits.Inc()
			audit.Log(auditlog.NewRunDeadlineEvent(runID, runErr.Error()))
		case errors.Is(runErr, errkind.BarrierIncomplete):
			m.BarrierIncomplete.Inc()
			audit.Log(auditlog.NewBarrierIncompleteEvent(runID, runErr.Error()))
		}
	}

	status.setPhase("validating")
	probeFn := func(ctx context.Context, edge planner.AllocatedEdge) (validator.Measurement, error) {
		latency, err := validator.ProbeLatency(ctx, addrs.probe[edge.Target])
		if err != nil {
			return validator.Measurement{}, err
		}
		bandwidth, err := validator.ProbeBandwidth(ctx, addrs.probe[edge.Target], cfg.Validator.ProbeBytes)
		if err != nil {
			return validator.Measurement{}, err
		}
		return validator.Measurement{Latency: latency, Bandwidth: bandwidth}, nil
	}
	summary, validateErr := validator.Validate(ctx, plan.AllocatedEdges, probeFn, logger)
	for _, e := range summary.Edges {
		if e.Err != nil {
			m.ValidatorEdgesTotal.WithLabelValues("fail").Inc()
			audit.Log(auditlog.NewShapingDriftEvent(runID, e.Target, e.Err.Error()))
		} else {
			m.ValidatorEdgesTotal.WithLabelValues("pass").Inc()
		}
		m.BandwidthError.Observe(e.Measurement.BandwidthErrorPct)
		m.LatencyError.Observe(e.Measurement.LatencyErrorPct)
	}
	status.setEdgeCounts(len(summary.Edges), countFailed(summary.Edges))

	for _, t := range orch.Timings() {
		m.TransferDuration.Observe(t.FileTransferDuration.Seconds())
		m.ConnectionLatency.Observe(t.ConnectionDuration.Seconds())
	}

	record := resultstore.BuildRecord(runID, len(peers), plan.Overlay.Variant.String(), artifact.Size, summary, orch.Timings(), hashMatch)
	if _, err := store.Commit(record); err != nil {
		logger.Warn("run: committing result record failed", zap.Error(err))
	}

	outcome := "pass"
	finalErr := runErr
	if finalErr == nil {
		finalErr = validateErr
	}
	if finalErr != nil {
		outcome = "fail"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	audit.Log(auditlog.NewRunCompletedEvent(runID, record.TestID, result.TotalDuration.Milliseconds()))
	status.setPhase("done")

	fmt.Printf("run %s: %d peers, overlay %s, outcome %s (test id %d)\n", runID, len(peers), plan.Overlay.Variant, outcome, record.TestID)
	return finalErr
}

func countFailed(edges []validator.EdgeResult) int {
	n := 0
	for _, e := range edges {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// loadArtifact builds the transfer artifact from the configured file path,
// or a synthetic random payload of the configured size when no path is
// set.
func loadArtifact(cfg *config.Config) (transfer.Artifact, error) {
	if cfg.Transfer.ArtifactPath != "" {
		data, err := os.ReadFile(cfg.Transfer.ArtifactPath)
		if err != nil {
			return transfer.Artifact{}, fmt.Errorf("reading artifact %s: %w", obslog.SanitizePath(cfg.Transfer.ArtifactPath), err)
		}
		return transfer.NewArtifact(data), nil
	}
	data := make([]byte, cfg.Transfer.ArtifactBytes)
	if _, err := rand.Read(data); err != nil {
		return transfer.Artifact{}, fmt.Errorf("generating synthetic artifact: %w", err)
	}
	return transfer.NewArtifact(data), nil
}

type addrSet struct {
	transfer map[string]string
	probe    map[string]string
}

// allocateAddrs assigns each peer a deterministic pair of loopback ports:
// one for the dissemination listener, one for the validator's probe
// listener.
func allocateAddrs(peers []topology.Peer, basePort int) addrSet {
	out := addrSet{transfer: make(map[string]string, len(peers)), probe: make(map[string]string, len(peers))}
	for i, p := range peers {
		out.transfer[p.Name] = fmt.Sprintf("127.0.0.1:%d", basePort+i*2)
		out.probe[p.Name] = fmt.Sprintf("127.0.0.1:%d", basePort+i*2+1)
	}
	return out
}

// shapingRules derives one fabric.ShapingRule per allocated edge, keyed by
// its source endpoint, from the planner's bandwidth allocation.
func shapingRules(plan planner.Plan, topo *fabric.Topology) map[string][]fabric.ShapingRule {
	rules := make(map[string][]fabric.ShapingRule)
	for i, e := range plan.AllocatedEdges {
		targetIP := ""
		if node, ok := topo.Topo.Nodes[e.Target]; ok {
			targetIP = node.MgmtIP4
		}
		rules[e.Source] = append(rules[e.Source], fabric.ShapingRule{
			Iface:         fmt.Sprintf("veth%d", i),
			TargetIP:      targetIP,
			LatencyMS:     e.Latency,
			LossPercent:   e.Loss * 100,
			BandwidthKbit: e.AllocatedBandwidth,
		})
	}
	return rules
}

// buildEndpoints assembles the orchestrator.Endpoint list for every peer in
// the plan's overlay, wiring each to its parent's dissemination address.
func buildEndpoints(plan planner.Plan, transferAddr map[string]string, trackerAddr string) []orchestrator.Endpoint {
	parentOf := make(map[string]string, len(plan.Overlay.Links))
	for _, l := range plan.Overlay.Links {
		parentOf[l.Target] = l.Source
	}
	isSource := make(map[string]bool)
	for _, s := range plan.Overlay.Sources() {
		isSource[s] = true
	}

	endpoints := make([]orchestrator.Endpoint, 0, len(plan.Topology.Peers))
	for _, p := range plan.Topology.Peers {
		var cfg orchestrator.RoleConfig
		switch {
		case p.IsOrigin():
			cfg = orchestrator.OriginConfig{
				ListenAddr: transferAddr[p.Name],
				Targets:    plan.Overlay.TargetsOf(p.Name),
			}
		case isSource[p.Name]:
			cfg = orchestrator.SuperPeerConfig{
				SourceAddr: transferAddr[parentOf[p.Name]],
				ListenAddr: transferAddr[p.Name],
				Targets:    plan.Overlay.TargetsOf(p.Name),
			}
		default:
			cfg = orchestrator.LeafConfig{SourceAddr: transferAddr[parentOf[p.Name]]}
		}
		endpoints = append(endpoints, orchestrator.Endpoint{Name: p.Name, Config: cfg, TrackerAddr: trackerAddr})
	}
	return endpoints
}

func startProbeListeners(ctx context.Context, peers []topology.Peer, probeAddr map[string]string) ([]net.Listener, error) {
	lns := make([]net.Listener, 0, len(peers))
	for _, p := range peers {
		ln, err := net.Listen("tcp", probeAddr[p.Name])
		if err != nil {
			closeAll(lns)
			return nil, fmt.Errorf("binding probe listener for %s: %w", p.Name, err)
		}
		lns = append(lns, ln)
		go func(l net.Listener) {
			_ = validator.ServeProbe(ctx, l)
		}(ln)
	}
	return lns, nil
}

func closeAll(lns []net.Listener) {
	for _, ln := range lns {
		_ = ln.Close()
	}
}

// runStatus is the mutable status snapshot the dashboard serves for an
// in-flight run.
type runStatus struct {
	mu sync.Mutex
	s  dashboard.Status
}

func newRunStatus(runID string) *runStatus {
	return &runStatus{s: dashboard.Status{RunID: runID, Phase: "starting"}}
}

func (r *runStatus) snapshot() dashboard.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s
}

func (r *runStatus) setPhase(phase string) {
	r.mu.Lock()
	r.s.Phase = phase
	r.mu.Unlock()
}

func (r *runStatus) setPeerCount(n int) {
	r.mu.Lock()
	r.s.PeerCount = n
	r.mu.Unlock()
}

func (r *runStatus) setOverlayKind(kind string) {
	r.mu.Lock()
	r.s.OverlayKind = kind
	r.mu.Unlock()
}

func (r *runStatus) setEdgeCounts(validated, failed int) {
	r.mu.Lock()
	r.s.ValidatedEdges = validated - failed
	r.s.FailedEdges = failed
	r.mu.Unlock()
}

// listenTracker runs the tracker wire protocol against orch's barrier.
// Every confirming connection is attributed to the generic name "peer":
// the barrier counts confirmations rather than deduplicating by identity,
// so a loopback source address carries no useful distinction here.
func listenTracker(ctx context.Context, ln net.Listener, orch *orchestrator.Orchestrator) error {
	return tracker.Listen(ctx, ln, orch.Barrier, func(net.Addr) string { return "peer" }, nil)
}
