package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clintcan/lecturebench/internal/fabric"
	"github.com/clintcan/lecturebench/internal/planner"
	"github.com/clintcan/lecturebench/internal/resultstore"
	"github.com/clintcan/lecturebench/internal/sampler"
)

var (
	planTopologyOut string
	planEdgesOut    string
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Sample a peer population and print the planned overlay without running it",
		RunE:  runPlan,
	}
	cmd.Flags().StringVar(&planTopologyOut, "topology-out", "", "write the fabric topology YAML to this path instead of stdout")
	cmd.Flags().StringVar(&planEdgesOut, "edges-out", "", "write the allocated-edges JSON to this path instead of stdout")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	peers, err := sampler.New(cfg.Sampler.Seed, nil).Draw(cfg.Sampler.PeerCount)
	if err != nil {
		return err
	}

	var partitioner planner.Partitioner
	if cfg.Topology.SuperPeerCount > 0 {
		partitioner = planner.CapacityPartitioner{SuperPeerCount: cfg.Topology.SuperPeerCount}
	}

	fileBytes := cfg.Transfer.ArtifactBytes
	plan, err := planner.BuildPlan(peers, cfg.Topology.UsesTwoTier, partitioner, fileBytes)
	if err != nil {
		return err
	}

	runID := resultstore.NewRunID()
	topo, err := fabric.Build(runID, plan, "lecturebench-endpoint")
	if err != nil {
		return err
	}

	topoYAML, err := yaml.Marshal(topo)
	if err != nil {
		return fmt.Errorf("plan: marshaling topology: %w", err)
	}
	if err := writeOrPrint(planTopologyOut, topoYAML); err != nil {
		return err
	}

	edgesJSON, err := json.MarshalIndent(plan.AllocatedEdges, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: marshaling allocated edges: %w", err)
	}
	if err := writeOrPrint(planEdgesOut, append(edgesJSON, '\n')); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "plan: %d peers, overlay %s, %d allocated edges\n", len(peers), plan.Overlay.Variant, len(plan.AllocatedEdges))
	return nil
}

func writeOrPrint(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
