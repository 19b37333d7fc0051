package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clintcan/lecturebench/internal/config"
	"github.com/clintcan/lecturebench/internal/errkind"
)

// setupLogger creates a configured zap logger based on the global flags.
func setupLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
	}
	return cfg.Build()
}

// loadConfig loads configuration from the --config path, falling back to
// the harness's built-in defaults when no path is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, configError{err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError{err}
	}
	return cfg, nil
}

// configError tags a configuration/flag-validation failure so exitCodeFor
// can distinguish it from a run failure (spec.md §6: configuration or
// unsupported input is exit code 3).
type configError struct{ err error }

func (c configError) Error() string { return c.err.Error() }
func (c configError) Unwrap() error { return c.err }

// exitCodeFor maps a returned error to the process exit code spec.md §6
// defines: 0 all checks pass, 1 any validator check fails, 2 the run-wide
// deadline was reached, 3 configuration/unsupported input.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var cfgErr configError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, errkind.SamplerUnsatisfiable), errors.Is(err, errkind.OverlayInvalid),
		errors.Is(err, errkind.OverAllocation), errors.Is(err, errkind.NoUplinkBudget):
		return 3
	case errors.Is(err, errkind.RunDeadline):
		return 2
	case errors.Is(err, errkind.ShapingDrift),
		errors.Is(err, errkind.MissingArtifact),
		errors.Is(err, errkind.HashMismatch),
		errors.Is(err, errkind.BarrierIncomplete):
		return 1
	default:
		return 3
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
