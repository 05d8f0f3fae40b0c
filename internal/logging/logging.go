// Package logging wraps zap for the registry core's ambient diagnostics:
// index-read warnings, tag-write plans, and CLI-level errors. The core
// itself takes a plain func(string) (registry.Collector.Warn); this
// package is what the CLI wires into that slot.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger writing to stderr, human-readable by default
// and switching to JSON when structured is requested (CI/log-aggregation
// use).
func New(verbose, structured bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !structured {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// WarnFunc adapts a zap.Logger to the func(string) shape
// registry.Collector and registry.ReadIndexAt expect for non-fatal
// warnings (malformed artifacts.yaml at a non-HEAD commit, etc).
func WarnFunc(logger *zap.Logger) func(string) {
	return func(msg string) {
		logger.Warn(msg)
	}
}
