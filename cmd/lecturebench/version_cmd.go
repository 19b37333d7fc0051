package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lecturebench version %s\n", version)
			fmt.Printf("\nFeatures:\n")
			fmt.Printf("  • Peer population sampling from configured distributions\n")
			fmt.Printf("  • Flat and two-tier overlay planning with bandwidth allocation\n")
			fmt.Printf("  • Fabric realization with per-edge latency/loss/bandwidth shaping\n")
			fmt.Printf("  • Origin/super-peer/leaf dissemination orchestration\n")
			fmt.Printf("  • Confirmation barrier with population-scaled deadlines\n")
			fmt.Printf("  • Per-edge bandwidth and latency quality validation\n")
			fmt.Printf("  • Result Record persistence to CSV and sqlite history\n")
			fmt.Printf("  • Prometheus metrics and a live status dashboard\n")
			fmt.Printf("  • JSON audit logging\n")
		},
	}
}
