package core

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger, stored as an atomic pointer so reads
// and writes from any goroutine are data-race-free. A nil value means no
// custom logger has been set and Logger falls back to a cached default
// derived from slog.Default().
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the default-derived logger so Logger does not
// re-create it on every call. The cache is cleared by SetLogger(nil); until
// then a later slog.SetDefault is not picked up, which is acceptable for a
// library logger.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. Safe from any goroutine.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	// CAS so a concurrently cached value wins and stays consistent.
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "pipespawn")
}

// SetLogger replaces the package-level logger. A nil l resets to the default,
// re-derived from slog.Default() on the next Logger call.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
