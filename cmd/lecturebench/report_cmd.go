package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clintcan/lecturebench/internal/resultstore"
)

var (
	reportLimit  int
	reportFormat string
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print recent Result Records from the history index",
		RunE:  runReport,
	}
	cmd.Flags().IntVar(&reportLimit, "limit", 20, "maximum number of recent records to print")
	cmd.Flags().StringVar(&reportFormat, "format", "table", "output format: table or csv")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	history, err := resultstore.OpenHistory(filepath.Join(cfg.Output.ResultsDir, "results.db"))
	if err != nil {
		return fmt.Errorf("report: opening history: %w", err)
	}
	defer history.Close()

	records, err := history.Recent(reportLimit)
	if err != nil {
		return fmt.Errorf("report: reading history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("report: no recorded runs")
		return nil
	}

	switch reportFormat {
	case "csv":
		return writeRecordsCSV(os.Stdout, records)
	default:
		writeRecordsTable(os.Stdout, records)
		return nil
	}
}

func writeRecordsTable(w *os.File, records []resultstore.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST ID\tRUN ID\tSTARTED\tPEERS\tOVERLAY\tARTIFACT\tBW MEAN\tLAT ERR MEAN\tHASH OK")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%.1f\t%.2f%%\t%t\n",
			r.TestID, r.RunID, r.StartedAt.Format("2006-01-02T15:04:05"),
			r.PeerCount, r.OverlayKind, formatBytes(r.ArtifactBytes),
			r.Bandwidth.Mean, r.LatencyError.Mean, r.HashMatch)
	}
	tw.Flush()
}

func writeRecordsCSV(w *os.File, records []resultstore.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"testId", "runId", "startedAt", "peerCount", "overlay", "artifactBytes", "bandwidthMean", "latencyErrorMean", "hashMatch"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.TestID), r.RunID, r.StartedAt.Format("2006-01-02T15:04:05"),
			fmt.Sprintf("%d", r.PeerCount), r.OverlayKind, fmt.Sprintf("%d", r.ArtifactBytes),
			fmt.Sprintf("%.2f", r.Bandwidth.Mean), fmt.Sprintf("%.2f", r.LatencyError.Mean),
			fmt.Sprintf("%t", r.HashMatch),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
