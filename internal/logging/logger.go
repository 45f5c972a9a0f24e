// Package logging provides a thin global wrapper around zap.Logger so that
// every package under qubed can log without threading a logger through
// every call. Production code (cmd/qubectl) sets the logger once during
// startup; tests may swap it without data races.
package logging

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	l   atomic.Pointer[zap.Logger]
	set atomic.Bool
)

// Set installs logger as the global logger. A nil logger downgrades
// silently to zap.NewNop().
func Set(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.Store(logger)
	set.Store(true)
}

// Logger returns the globally registered logger, installing a no-op
// logger on first use if none has been set.
func Logger() *zap.Logger {
	if logger := l.Load(); logger != nil {
		return logger
	}
	nop := zap.NewNop()
	l.Store(nop)
	return nop
}

// Sugar is shorthand for Logger().Sugar().
func Sugar() *zap.SugaredLogger { return Logger().Sugar() }

// Initialised reports whether Set has been called (even with nil), as
// opposed to Logger() having lazily installed a no-op default.
func Initialised() bool { return set.Load() }
