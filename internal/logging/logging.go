// Package logging builds the zap loggers used by the taskpool command and tests.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Validate reports whether level and format are accepted by New.
func Validate(level, format string) error {
	_, err := parse(level, format)
	return err
}

func parse(level, format string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	switch strings.ToLower(format) {
	case FormatJSON, FormatConsole, "":
		return lvl, nil
	default:
		return lvl, fmt.Errorf("unsupported log format %q", format)
	}
}

// New builds a logger at the given level ("debug", "info", "warn", "error")
// writing either human readable console output or JSON to stderr.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := parse(level, format)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if strings.ToLower(format) == FormatJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Install builds a logger with New and makes it the process-wide zap logger.
// The returned function restores the previous globals and flushes the logger.
func Install(level, format string) (func(), error) {
	logger, err := New(level, format)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
