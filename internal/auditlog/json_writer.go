package auditlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ulikunitz/xz"
)

// JSONWriter writes audit events to a JSON-lines file with rotation; a
// rotated backup is compressed with xz before being kept, grounded on the
// teacher's own audit JSON writer rotation shape.
type JSONWriter struct {
	path       string
	maxBytes   int64
	maxBackups int

	file    *os.File
	encoder *json.Encoder
	written int64
	mu      sync.Mutex
}

// JSONWriterConfig configures the JSON audit writer.
type JSONWriterConfig struct {
	// Path is the file path for the audit log.
	Path string

	// MaxSizeMB is the maximum file size before rotation (default: 100).
	MaxSizeMB int

	// MaxBackups is the number of rotated, compressed backups to keep
	// (default: 5).
	MaxBackups int
}

// NewJSONWriter creates a new JSON audit log writer.
func NewJSONWriter(cfg JSONWriterConfig) (*JSONWriter, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("auditlog: path is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("auditlog: creating audit log directory: %w", err)
	}

	w := &JSONWriter{
		path:       cfg.Path,
		maxBytes:   int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *JSONWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("auditlog: opening audit log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return fmt.Errorf("auditlog: stat audit log: %w (also failed to close: %v)", err, closeErr)
		}
		return fmt.Errorf("auditlog: stat audit log: %w", err)
	}
	w.file = f
	w.encoder = json.NewEncoder(f)
	w.written = info.Size()
	return nil
}

// Log writes one audit event, rotating the log first if it has grown past
// maxBytes.
func (w *JSONWriter) Log(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return
	}
	if w.written >= w.maxBytes {
		if err := w.rotate(); err != nil {
			return
		}
	}
	if err := w.encoder.Encode(event); err != nil {
		return
	}
	if info, err := w.file.Stat(); err == nil {
		w.written = info.Size()
	}
}

// rotate closes the current log, compresses it to .1.xz (shifting older
// backups up by one, dropping the oldest past maxBackups), and reopens a
// fresh log file.
func (w *JSONWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("auditlog: closing audit log for rotation: %w", err)
		}
	}

	for i := w.maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d.xz", w.path, i)
		newPath := fmt.Sprintf("%s.%d.xz", w.path, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	if err := compressToXZ(w.path, w.path+".1.xz"); err != nil && !os.IsNotExist(err) {
		if openErr := w.openFile(); openErr != nil {
			return fmt.Errorf("auditlog: rotating audit log: %w (also failed to reopen: %v)", err, openErr)
		}
		return fmt.Errorf("auditlog: rotating audit log: %w", err)
	}

	oldestPath := fmt.Sprintf("%s.%d.xz", w.path, w.maxBackups+1)
	_ = os.Remove(oldestPath)

	return w.openFile()
}

// compressToXZ writes src's contents, xz-compressed, to dst and removes
// src on success.
func compressToXZ(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	xw, err := xz.NewWriter(out)
	if err != nil {
		out.Close()
		return fmt.Errorf("auditlog: creating xz writer: %w", err)
	}
	if _, err := io.Copy(xw, in); err != nil {
		xw.Close()
		out.Close()
		return fmt.Errorf("auditlog: compressing audit log: %w", err)
	}
	if err := xw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("auditlog: finalizing xz stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// Close closes the JSON writer.
func (w *JSONWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.encoder = nil
	return err
}

var _ Logger = (*JSONWriter)(nil)
