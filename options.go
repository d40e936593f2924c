package pipespawn

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pipeworks/pipespawn/internal/core"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive(name string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("pipespawn: %s must be greater than 0, got %d", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("pipespawn: %s must not be empty", name))
	}
}

// Option configures a Reactor during construction via New. Each With*
// function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input. These panics are
// intentional: option values are typically compile-time constants or
// package-level variables, so an invalid value indicates a programmer error
// rather than a runtime condition. The pattern mirrors [regexp.MustCompile]:
// fail fast during initialization instead of returning errors that would be
// universally fatal anyway.
type Option func(*core.Config)

// WithSlots sets the number of thread-slots. Each slot carries its own poll
// table and must be serviced by exactly one goroutine.
//
// Default: DefaultSlotCount.
//
// Panics if n <= 0.
func WithSlots(n int) Option {
	requirePositive("slot count", n)
	return func(c *core.Config) {
		c.Slots = n
	}
}

// WithDescriptorLimit caps the descriptors registered per slot. One table
// position is kept in reserve, so a spawn needs headroom for its three
// descriptors below limit-1.
//
// Default: DefaultDescriptorLimit.
//
// Panics if limit <= 0.
func WithDescriptorLimit(limit int) Option {
	requirePositive("descriptor limit", limit)
	return func(c *core.Config) {
		c.DescriptorLimit = limit
	}
}

// WithEventBuffer sets how many readiness events one Service call collects
// from the poll backend at most.
//
// Default: DefaultEventBuffer.
//
// Panics if n <= 0.
func WithEventBuffer(n int) Option {
	requirePositive("event buffer", n)
	return func(c *core.Config) {
		c.EventBuffer = n
	}
}

// WithScratchDir sets the base path of the lock-guarded working directory
// spawned children start in. The directory is created if absent and guarded
// with a file lock against concurrent reactors.
//
// Default: a fresh directory under the system temp directory.
//
// Panics if base is empty.
func WithScratchDir(base string) Option {
	requireNonEmpty("scratch dir", base)
	return func(c *core.Config) {
		c.ScratchBase = base
	}
}

// WithJournal enables the SQLite spawn journal at the given path. Every
// spawn and collected exit is recorded; Reactor.Journal reads them back.
//
// Default: no journal.
//
// Panics if path is empty.
func WithJournal(path string) Option {
	requireNonEmpty("journal path", path)
	return func(c *core.Config) {
		c.JournalPath = path
	}
}

// WithMetrics registers the reactor's Prometheus collectors (live
// descriptors, spawns, failures, reaps, signal escalations) with reg.
//
// Default: no instrumentation.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *core.Config) {
		c.Registerer = reg
	}
}

// WithPreRegisterHook installs a hook that runs before each descriptor
// enters a slot's poll table. An error from the hook aborts the spawn, which
// unwinds cleanly.
func WithPreRegisterHook(hook func(*Descriptor) error) Option {
	return func(c *core.Config) {
		c.PreRegister = hook
	}
}

// WithExecFailStatus sets the exit status children die with when their exec
// never happens.
//
// Default: DefaultExecFailStatus.
//
// Panics if status <= 0 or status > 255.
func WithExecFailStatus(status int) Option {
	if status <= 0 || status > 255 {
		panic(fmt.Sprintf("pipespawn: exec fail status must be in 1..255, got %d", status))
	}
	return func(c *core.Config) {
		c.ExecFailStatus = status
	}
}

// WithParentDeathSignal sets the signal delivered to children when this
// process dies. Zero keeps the default (SIGTERM); Linux only.
func WithParentDeathSignal(sig int) Option {
	return func(c *core.Config) {
		c.ParentDeathSignal = sig
	}
}
