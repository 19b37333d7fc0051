// Package config handles configuration loading and defaults for the
// harness.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for a harness run.
type Config struct {
	Sampler   SamplerConfig   `toml:"sampler"`
	Topology  TopologyConfig  `toml:"topology"`
	Transfer  TransferConfig  `toml:"transfer"`
	Validator ValidatorConfig `toml:"validator"`
	Output    OutputConfig    `toml:"output"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// SamplerConfig controls peer-profile generation (spec.md §4.1).
type SamplerConfig struct {
	PeerCount int   `toml:"peer_count"`
	Seed      int64 `toml:"seed"`
}

// TopologyConfig controls overlay shape (spec.md §4.2.2).
type TopologyConfig struct {
	UsesTwoTier    bool `toml:"uses_two_tier"`
	SuperPeerCount int  `toml:"super_peer_count"` // 0 = let the partitioner choose
}

// TransferConfig controls the distributed artifact and run deadline.
type TransferConfig struct {
	ArtifactPath    string `toml:"artifact_path"`
	ArtifactBytes   int64  `toml:"artifact_bytes"` // used instead of a path when generating a synthetic payload
	RunDeadline     string `toml:"run_deadline"`   // empty = orchestrator.runDeadline(N) default
	BindRetryWindow string `toml:"bind_retry_window"`
}

// RunDeadlineDuration parses RunDeadline, returning 0 (meaning "use the
// orchestrator default") if unset or unparsable.
func (c *TransferConfig) RunDeadlineDuration() time.Duration {
	if c.RunDeadline == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RunDeadline)
	if err != nil {
		return 0
	}
	return d
}

// ValidatorConfig controls the post-transfer probe pass (spec.md §4.5).
type ValidatorConfig struct {
	ProbeBytes       int64 `toml:"probe_bytes"`
	MaxConcurrent    int   `toml:"max_concurrent"`
}

// OutputConfig controls where the Result Record and audit trail land.
type OutputConfig struct {
	ResultsDir string `toml:"results_dir"`
	AuditPath  string `toml:"audit_path"`
}

// LoggingConfig controls zap logger construction.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Port int    `toml:"port"`
	Bind string `toml:"bind"`
}

// DefaultConfig returns the harness's built-in defaults.
func DefaultConfig() *Config {
	resultsDir := os.Getenv("LECTUREBENCH_RESULTS_DIR")
	if resultsDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "/tmp"
		}
		resultsDir = filepath.Join(homeDir, ".local", "share", "lecturebench")
	}

	return &Config{
		Sampler: SamplerConfig{
			PeerCount: 10,
			Seed:      1,
		},
		Topology: TopologyConfig{
			UsesTwoTier:    false,
			SuperPeerCount: 0,
		},
		Transfer: TransferConfig{
			ArtifactBytes: 10 * 1024 * 1024, // 10MB synthetic payload
		},
		Validator: ValidatorConfig{
			ProbeBytes:    1024 * 1024, // 1MB bandwidth probe payload
			MaxConcurrent: 8,
		},
		Output: OutputConfig{
			ResultsDir: resultsDir,
			AuditPath:  filepath.Join(resultsDir, "audit.jsonl"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Port: 9978,
			Bind: "127.0.0.1",
		},
	}
}

// Load reads configuration from a TOML file, merging with defaults. A
// missing file is not an error — the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to a TOML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: creating directory for %s: %w", path, err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the configuration for values the rest of the harness
// cannot tolerate.
func (c *Config) Validate() error {
	if c.Sampler.PeerCount < 1 {
		return fmt.Errorf("config: sampler.peer_count must be at least 1, got %d", c.Sampler.PeerCount)
	}
	if c.Transfer.ArtifactPath == "" && c.Transfer.ArtifactBytes <= 0 {
		return fmt.Errorf("config: transfer.artifact_path or transfer.artifact_bytes must be set")
	}
	if c.Validator.MaxConcurrent < 1 {
		return fmt.Errorf("config: validator.max_concurrent must be at least 1, got %d", c.Validator.MaxConcurrent)
	}
	return nil
}
