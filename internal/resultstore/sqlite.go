package resultstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History is a queryable enrichment index over Result Records, mirrored
// alongside (never instead of) the CSV. Grounded on the sqlite-index
// shape the teacher used for its package content cache.
type History struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	test_id           INTEGER PRIMARY KEY,
	run_id            TEXT NOT NULL,
	started_at        TEXT NOT NULL,
	peer_count        INTEGER NOT NULL,
	overlay           TEXT NOT NULL,
	artifact_bytes    INTEGER NOT NULL,
	bandwidth_min     REAL NOT NULL,
	bandwidth_avg     REAL NOT NULL,
	bandwidth_max     REAL NOT NULL,
	latency_err_min   REAL NOT NULL,
	latency_err_avg   REAL NOT NULL,
	latency_err_max   REAL NOT NULL,
	bw_err_min        REAL NOT NULL,
	bw_err_avg        REAL NOT NULL,
	bw_err_max        REAL NOT NULL,
	conn_time_min     REAL NOT NULL,
	conn_time_avg     REAL NOT NULL,
	conn_time_max     REAL NOT NULL,
	transfer_time_min REAL NOT NULL,
	transfer_time_avg REAL NOT NULL,
	transfer_time_max REAL NOT NULL,
	total_time_min    REAL NOT NULL,
	total_time_avg    REAL NOT NULL,
	total_time_max    REAL NOT NULL,
	hash_match        INTEGER NOT NULL
);
`

// OpenHistory opens (creating if necessary) the sqlite history database
// at path and ensures its schema exists.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("resultstore: opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("resultstore: creating history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// Insert mirrors one Result Record into the history index.
func (h *History) Insert(r Record) error {
	_, err := h.db.Exec(`
		INSERT OR REPLACE INTO results (
			test_id, run_id, started_at, peer_count, overlay, artifact_bytes,
			bandwidth_min, bandwidth_avg, bandwidth_max,
			latency_err_min, latency_err_avg, latency_err_max,
			bw_err_min, bw_err_avg, bw_err_max,
			conn_time_min, conn_time_avg, conn_time_max,
			transfer_time_min, transfer_time_avg, transfer_time_max,
			total_time_min, total_time_avg, total_time_max,
			hash_match
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TestID, r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.PeerCount, r.OverlayKind, r.ArtifactBytes,
		r.Bandwidth.Min, r.Bandwidth.Mean, r.Bandwidth.Max,
		r.LatencyError.Min, r.LatencyError.Mean, r.LatencyError.Max,
		r.BandwidthError.Min, r.BandwidthError.Mean, r.BandwidthError.Max,
		r.ConnectionTime.Min, r.ConnectionTime.Mean, r.ConnectionTime.Max,
		r.TransferTime.Min, r.TransferTime.Mean, r.TransferTime.Max,
		r.TotalTime.Min, r.TotalTime.Mean, r.TotalTime.Max,
		r.HashMatch,
	)
	if err != nil {
		return fmt.Errorf("resultstore: inserting history row: %w", err)
	}
	return nil
}

// Recent returns up to limit most recent records, newest first.
func (h *History) Recent(limit int) ([]Record, error) {
	rows, err := h.db.Query(`
		SELECT test_id, run_id, started_at, peer_count, overlay, artifact_bytes,
			bandwidth_min, bandwidth_avg, bandwidth_max,
			latency_err_min, latency_err_avg, latency_err_max,
			bw_err_min, bw_err_avg, bw_err_max,
			conn_time_min, conn_time_avg, conn_time_max,
			transfer_time_min, transfer_time_avg, transfer_time_max,
			total_time_min, total_time_avg, total_time_max,
			hash_match
		FROM results ORDER BY test_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("resultstore: querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var startedAt string
		if err := rows.Scan(
			&r.TestID, &r.RunID, &startedAt, &r.PeerCount, &r.OverlayKind, &r.ArtifactBytes,
			&r.Bandwidth.Min, &r.Bandwidth.Mean, &r.Bandwidth.Max,
			&r.LatencyError.Min, &r.LatencyError.Mean, &r.LatencyError.Max,
			&r.BandwidthError.Min, &r.BandwidthError.Mean, &r.BandwidthError.Max,
			&r.ConnectionTime.Min, &r.ConnectionTime.Mean, &r.ConnectionTime.Max,
			&r.TransferTime.Min, &r.TransferTime.Mean, &r.TransferTime.Max,
			&r.TotalTime.Min, &r.TotalTime.Mean, &r.TotalTime.Max,
			&r.HashMatch,
		); err != nil {
			return nil, fmt.Errorf("resultstore: scanning history row: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("resultstore: parsing startedAt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
