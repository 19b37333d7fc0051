package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clintcan/lecturebench/internal/obslog"
	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/topology"
	"github.com/clintcan/lecturebench/internal/validator"
)

var (
	validateEdgesPath string
	validateAddrsPath string
	validateHost      string
	validateBasePort  int
	validateProbeSize int64
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Probe a planned overlay's edges against live probe listeners and report quality",
		RunE:  runValidate,
	}
	cmd.Flags().StringVar(&validateEdgesPath, "edges", "", "path to the allocated-edges JSON produced by 'plan --edges-out' (required)")
	cmd.Flags().StringVar(&validateAddrsPath, "addrs", "", "path to a JSON object mapping peer name to probe listener address; overrides --base-port derivation")
	cmd.Flags().StringVar(&validateHost, "host", "127.0.0.1", "host the probe listeners are reachable on, when deriving addresses from --base-port")
	cmd.Flags().IntVar(&validateBasePort, "base-port", 20000, "first probe listener port, matching the 'run' command's allocation (host:basePort+2i+1)")
	cmd.Flags().Int64Var(&validateProbeSize, "probe-bytes", 1024*1024, "bandwidth probe payload size in bytes")
	_ = cmd.MarkFlagRequired("edges")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger()
	if err != nil {
		return configError{err}
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(validateEdgesPath)
	if err != nil {
		return configError{fmt.Errorf("validate: reading %s: %w", obslog.SanitizePath(validateEdgesPath), err)}
	}
	var edges []planner.AllocatedEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return configError{fmt.Errorf("validate: parsing %s: %w", obslog.SanitizePath(validateEdgesPath), err)}
	}

	addrs, err := validateProbeAddrs(edges)
	if err != nil {
		return configError{err}
	}

	probeFn := func(ctx context.Context, edge planner.AllocatedEdge) (validator.Measurement, error) {
		addr, ok := addrs[edge.Target]
		if !ok {
			return validator.Measurement{}, fmt.Errorf("validate: no probe address for target %s", edge.Target)
		}
		latency, err := validator.ProbeLatency(ctx, addr)
		if err != nil {
			return validator.Measurement{}, err
		}
		bandwidth, err := validator.ProbeBandwidth(ctx, addr, validateProbeSize)
		if err != nil {
			return validator.Measurement{}, err
		}
		return validator.Measurement{Latency: latency, Bandwidth: bandwidth}, nil
	}

	summary, err := validator.Validate(cmd.Context(), edges, probeFn, logger)
	printSummary(summary)
	return err
}

// validateProbeAddrs resolves each edge target's probe address, either from
// an explicit addrs map file or by deriving it from --base-port with i the
// target's index in the sampled peer catalog (origin 0, peer "k" at k),
// matching how the 'run' command allocates ports (host:basePort+2i+1).
func validateProbeAddrs(edges []planner.AllocatedEdge) (map[string]string, error) {
	if validateAddrsPath != "" {
		data, err := os.ReadFile(validateAddrsPath)
		if err != nil {
			return nil, fmt.Errorf("validate: reading %s: %w", validateAddrsPath, err)
		}
		var addrs map[string]string
		if err := json.Unmarshal(data, &addrs); err != nil {
			return nil, fmt.Errorf("validate: parsing %s: %w", validateAddrsPath, err)
		}
		return addrs, nil
	}

	addrs := make(map[string]string)
	for _, e := range edges {
		if _, ok := addrs[e.Target]; ok {
			continue
		}
		i := 0
		if e.Target != topology.OriginName {
			n, err := strconv.Atoi(e.Target)
			if err != nil {
				return nil, fmt.Errorf("validate: cannot derive a probe port for peer %q; pass --addrs", e.Target)
			}
			i = n
		}
		addrs[e.Target] = fmt.Sprintf("%s:%d", validateHost, validateBasePort+i*2+1)
	}
	return addrs, nil
}

func printSummary(s validator.Summary) {
	fmt.Printf("validated %d edges\n", len(s.Edges))
	fmt.Printf("bandwidth error: min %.2f%% mean %.2f%% max %.2f%%\n", s.BandwidthErrorMin, s.BandwidthErrorMean, s.BandwidthErrorMax)
	fmt.Printf("latency error:   min %.2f%% mean %.2f%% max %.2f%%\n", s.LatencyErrorMin, s.LatencyErrorMean, s.LatencyErrorMax)
	for _, e := range s.Edges {
		if e.Err != nil {
			fmt.Printf("  FAIL %s->%s: %v\n", e.Source, e.Target, e.Err)
		}
	}
}
