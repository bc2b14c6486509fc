// Package diag holds the package-level diagnostic logger used by the
// ringqueue hot paths that occasionally need to report something (a stalled
// locked-writer claim, a slow attach retry) without taking a logger as a
// constructor parameter on every type in the call chain.
package diag

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger replaces the package-level diagnostic logger. Applications
// embedding ringqueue call this once at startup with their own *zap.Logger;
// the default is a no-op logger, matching the original C++ lineage's
// opt-in stderr warnings rather than forcing output on every consumer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the current package-level diagnostic logger.
func Logger() *zap.Logger {
	return logger
}
