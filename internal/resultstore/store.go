package resultstore

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store is the single entry point a run uses to obtain a testId, persist
// its Result Record to the append-only CSV, and mirror it into the
// sqlite history index.
type Store struct {
	counter *Counter
	csv     *CSVWriter
	history *History
}

// Open wires up a Store rooted at dir: dir/testid.next, dir/results.csv,
// dir/results.db.
func Open(dir string) (*Store, error) {
	history, err := OpenHistory(filepath.Join(dir, "results.db"))
	if err != nil {
		return nil, err
	}
	return &Store{
		counter: NewCounter(filepath.Join(dir, "testid.next")),
		csv:     NewCSVWriter(filepath.Join(dir, "results.csv")),
		history: history,
	}, nil
}

// Close releases the history database handle.
func (s *Store) Close() error {
	return s.history.Close()
}

// NewRunID mints a fresh per-run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Commit allocates the next testId, stamps it and a start time onto r,
// appends r to the CSV, and mirrors it into the history index. The CSV
// write always happens even if the history mirror fails — the CSV is the
// spec-required artifact, the sqlite index is enrichment only.
func (s *Store) Commit(r Record) (Record, error) {
	id, err := s.counter.Next()
	if err != nil {
		return r, err
	}
	r.TestID = id
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	if err := s.csv.Append(r); err != nil {
		return r, err
	}
	if err := s.history.Insert(r); err != nil {
		return r, fmt.Errorf("resultstore: csv written, history mirror failed: %w", err)
	}
	return r, nil
}
