package resultstore

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Counter hands out monotonically increasing testId values backed by a
// single counter file. It assumes a single writer per host, the same
// assumption the teacher's audit writer makes about its own log file.
type Counter struct {
	mu   sync.Mutex
	path string
}

// NewCounter opens (or creates) the counter file at path.
func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

// Next reads the current value, increments it, writes it back, and
// returns the new value. The first call on a missing file starts at 1.
func (c *Counter) Next() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.read()
	if err != nil {
		return 0, fmt.Errorf("resultstore: reading testid counter: %w", err)
	}
	next := current + 1
	if err := c.write(next); err != nil {
		return 0, fmt.Errorf("resultstore: writing testid counter: %w", err)
	}
	return next, nil
}

func (c *Counter) read() (int64, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return 0, nil
	}
	return strconv.ParseInt(trimmed, 10, 64)
}

func (c *Counter) write(value int64) error {
	return os.WriteFile(c.path, []byte(strconv.FormatInt(value, 10)+"\n"), 0o644)
}
