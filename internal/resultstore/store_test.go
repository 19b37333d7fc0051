package resultstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounterMonotonic(t *testing.T) {
	dir := t.TempDir()
	c := NewCounter(filepath.Join(dir, "testid.next"))

	first, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	second, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, int64(2), second)
}

func TestCSVWriterWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	w := NewCSVWriter(path)

	require.NoError(t, w.Append(Record{TestID: 1, RunID: "a", StartedAt: time.Now(), PeerCount: 3}))
	require.NoError(t, w.Append(Record{TestID: 2, RunID: "b", StartedAt: time.Now(), PeerCount: 5}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 3, lines) // header + 2 rows
}

func TestHistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	h, err := OpenHistory(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer h.Close()

	rec := Record{
		TestID:      1,
		RunID:       "run-a",
		StartedAt:   time.Now(),
		PeerCount:   4,
		OverlayKind: "star",
		HashMatch:   true,
	}
	require.NoError(t, h.Insert(rec))

	recent, err := h.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "run-a", recent[0].RunID)
	require.True(t, recent[0].HashMatch)
}

func TestStoreCommitAssignsTestIDAndPersists(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	rec, err := store.Commit(Record{RunID: NewRunID(), PeerCount: 2, OverlayKind: "star", HashMatch: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.TestID)

	rec2, err := store.Commit(Record{RunID: NewRunID(), PeerCount: 2, OverlayKind: "star", HashMatch: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), rec2.TestID)

	recent, err := store.history.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
}

func TestNewRunIDUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	require.NotEqual(t, a, b)
	require.NotEmpty(t, a)
}
