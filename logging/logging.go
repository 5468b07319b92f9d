// Package logging builds the zap loggers used by every command.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger, or a console logger when debug is
// set. level is a zap level name such as "debug" or "warn".
func New(level string, debug bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	// stdout carries the MCP stdio protocol
	config.OutputPaths = []string{"stderr"}

	return config.Build()
}

// Must is New that falls back to a no-op logger
func Must(level string, debug bool) *zap.Logger {
	logger, err := New(level, debug)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
