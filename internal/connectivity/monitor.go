// Package connectivity provides a liveness probe against the origin
// endpoint's management IP, used by the orchestrator's startup pacing
// (spec.md §4.4.3).
package connectivity

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Mode represents whether the origin endpoint is currently reachable.
type Mode int32

const (
	// ModeOffline indicates the origin has not yet answered a liveness
	// check — shaping may still be settling.
	ModeOffline Mode = iota
	// ModeOnline indicates the origin answered the last liveness check.
	ModeOnline
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeOnline:
		return "online"
	case ModeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Config holds connectivity monitor configuration.
type Config struct {
	// CheckInterval is how often to probe the origin while waiting.
	CheckInterval time.Duration

	// CheckURL is the origin's management-IP health endpoint.
	CheckURL string

	// CheckTimeout is the timeout for a single liveness check.
	CheckTimeout time.Duration

	// OnModeChange is called when the reachability mode changes.
	OnModeChange func(old, new Mode)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		CheckInterval: 2 * time.Second,
		CheckTimeout:  2 * time.Second,
	}
}

// Monitor probes origin reachability and exposes the current mode.
type Monitor struct {
	mode          atomic.Int32
	checkInterval time.Duration
	checkURL      string
	checkTimeout  time.Duration
	onModeChange  func(old, new Mode)
	logger        *zap.Logger
	client        *http.Client
}

// NewMonitor creates a new connectivity monitor targeting checkURL.
func NewMonitor(cfg *Config, logger *zap.Logger) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 2 * time.Second
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		checkInterval: cfg.CheckInterval,
		checkURL:      cfg.CheckURL,
		checkTimeout:  cfg.CheckTimeout,
		onModeChange:  cfg.OnModeChange,
		logger:        logger,
		client:        &http.Client{Timeout: cfg.CheckTimeout},
	}
	m.mode.Store(int32(ModeOffline))
	return m
}

// GetMode returns the current reachability mode.
func (m *Monitor) GetMode() Mode {
	return Mode(m.mode.Load())
}

// Start runs periodic liveness checks until ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("starting origin liveness monitor",
		zap.Duration("checkInterval", m.checkInterval),
		zap.String("checkURL", m.checkURL))

	m.checkAndUpdate(ctx)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkAndUpdate(ctx)
		}
	}
}

// WaitUntilOnline blocks until the origin answers a liveness check or ctx
// is done.
func (m *Monitor) WaitUntilOnline(ctx context.Context) error {
	if m.GetMode() == ModeOnline {
		return nil
	}
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()
	m.checkAndUpdate(ctx)
	for {
		if m.GetMode() == ModeOnline {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.checkAndUpdate(ctx)
		}
	}
}

func (m *Monitor) checkAndUpdate(ctx context.Context) {
	newMode := m.checkConnectivity(ctx)
	oldMode := Mode(m.mode.Swap(int32(newMode)))
	if oldMode != newMode {
		m.logger.Info("origin reachability changed",
			zap.String("from", oldMode.String()),
			zap.String("to", newMode.String()))
		if m.onModeChange != nil {
			m.onModeChange(oldMode, newMode)
		}
	}
}

func (m *Monitor) checkConnectivity(ctx context.Context) Mode {
	checkCtx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, m.checkURL, nil)
	if err != nil {
		m.logger.Debug("failed to build liveness check request", zap.Error(err))
		return ModeOffline
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Debug("origin liveness check failed", zap.String("url", m.checkURL), zap.Error(err))
		return ModeOffline
	}
	defer resp.Body.Close()

	m.logger.Debug("origin liveness check succeeded", zap.String("url", m.checkURL), zap.Int("statusCode", resp.StatusCode))
	return ModeOnline
}

// ForceMode forces a specific reachability mode (useful for testing).
func (m *Monitor) ForceMode(mode Mode) {
	oldMode := Mode(m.mode.Swap(int32(mode)))
	if oldMode != mode {
		m.logger.Info("origin reachability forced", zap.String("from", oldMode.String()), zap.String("to", mode.String()))
		if m.onModeChange != nil {
			m.onModeChange(oldMode, mode)
		}
	}
}
