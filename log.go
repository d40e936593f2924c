package pipespawn

import (
	"log/slog"

	"github.com/pipeworks/pipespawn/internal/core"
)

// SetLogger replaces the package-level logger used by pipespawn.
// This allows applications to integrate pipespawn logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; pipespawn will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other pipespawn operations.
// Both the custom logger and the cached default are stored as atomic
// pointers, so loads and stores are data-race-free.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
