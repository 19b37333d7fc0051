package resultstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVWriter appends Result Records to a single CSV file, writing the
// header once if the file is new.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Append writes one record as a trailing CSV row, creating the file (with
// header) if it doesn't exist yet.
func (w *CSVWriter) Append(r Record) error {
	isNew := false
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		isNew = true
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("resultstore: opening results csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if isNew {
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("resultstore: writing csv header: %w", err)
		}
	}
	if err := cw.Write(recordRow(r)); err != nil {
		return fmt.Errorf("resultstore: writing csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(r Record) []string {
	f := strconv.FormatFloat
	return []string{
		strconv.FormatInt(r.TestID, 10),
		r.RunID,
		r.StartedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(r.PeerCount),
		r.OverlayKind,
		strconv.FormatInt(r.ArtifactBytes, 10),
		f(r.Bandwidth.Min, 'f', 2, 64), f(r.Bandwidth.Mean, 'f', 2, 64), f(r.Bandwidth.Max, 'f', 2, 64),
		f(r.LatencyError.Min, 'f', 2, 64), f(r.LatencyError.Mean, 'f', 2, 64), f(r.LatencyError.Max, 'f', 2, 64),
		f(r.BandwidthError.Min, 'f', 2, 64), f(r.BandwidthError.Mean, 'f', 2, 64), f(r.BandwidthError.Max, 'f', 2, 64),
		f(r.ConnectionTime.Min, 'f', 2, 64), f(r.ConnectionTime.Mean, 'f', 2, 64), f(r.ConnectionTime.Max, 'f', 2, 64),
		f(r.TransferTime.Min, 'f', 2, 64), f(r.TransferTime.Mean, 'f', 2, 64), f(r.TransferTime.Max, 'f', 2, 64),
		f(r.TotalTime.Min, 'f', 2, 64), f(r.TotalTime.Mean, 'f', 2, 64), f(r.TotalTime.Max, 'f', 2, 64),
		strconv.FormatBool(r.HashMatch),
	}
}
