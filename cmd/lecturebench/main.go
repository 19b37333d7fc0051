// lecturebench runs the network-testbed harness described in the
// project's spec: it samples a peer population, plans a shaped overlay,
// realizes it through a fabric, drives dissemination, validates the
// result, and records it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Set at build time via -ldflags.
	version = "dev"

	cfgFile  string
	logLevel string
	logFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lecturebench",
		Short: "Network testbed harness for shaped P2P dissemination runs",
		Long: `lecturebench drives a single reproducible run of the testbed:

  sampler    draws a peer population from the configured distributions
  planner    selects an overlay and allocates per-edge bandwidth
  fabric     realizes the overlay and applies shaping rules
  orchestrator  drives the origin/super-peer/leaf transfer roles
  validator  probes every edge and checks artifact integrity
  resultstore   records the Result Record to CSV and SQLite`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (TOML)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default: stderr)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
