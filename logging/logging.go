// Package logging provides a thin structured-logging wrapper used across
// this module, matching the sugared-call convention (Infow/Debugw/Warnw/
// Errorw) that the rest of the pack uses around go.uber.org/zap.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used by qp and cmd/wbcdemo.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	// Sync flushes any buffered log entries.
	Sync() error
}

type sugared struct {
	*zap.SugaredLogger
}

// NewLogger returns a Logger that writes Info+ to stderr.
func NewLogger(name string) Logger {
	return newLogger(name, zap.InfoLevel)
}

// NewDebugLogger returns a Logger that writes Debug+ to stderr, useful
// in tests and the demo binary.
func NewDebugLogger(name string) Logger {
	return newLogger(name, zap.DebugLevel)
}

func newLogger(name string, level zapcore.Level) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		// zap.NewDevelopmentConfig().Build() only fails on a broken
		// output path, which we never configure; fall back to a no-op.
		z = zap.NewNop()
	}
	return &sugared{z.Named(name).Sugar()}
}

// NewNopLogger returns a Logger that discards everything; useful for
// silent operation (see qp.WithSilent) or tests that don't want log noise.
func NewNopLogger() Logger {
	return &sugared{zap.NewNop().Sugar()}
}

func (s *sugared) Sync() error {
	return s.SugaredLogger.Sync()
}
