package pipespawn

import (
	"context"
	"time"

	"github.com/pipeworks/pipespawn/internal/core"
	"github.com/pipeworks/pipespawn/internal/journal"
	"github.com/pipeworks/pipespawn/internal/poller"
)

// Core reactor types, aliased so callers work with one package. A Handle is
// caller-allocated and populated by Spawn; everything else is constructed by
// the reactor.
type (
	// Handle represents one spawned child and its three piped channels.
	Handle = core.Handle

	// Owner is an intrusive collection of handles for bulk teardown.
	Owner = core.Owner

	// Protocol is a named set of readiness handlers.
	Protocol = core.Protocol

	// Descriptor is a registered non-blocking pipe end.
	Descriptor = core.Descriptor

	// SpawnConfig describes one child to spawn.
	SpawnConfig = core.SpawnConfig

	// Slot is one reactor thread-slot; Service drives it.
	Slot = core.Slot

	// Channel identifies stdin, stdout or stderr.
	Channel = core.Channel

	// ReapOutcome reports how TerminateAndReap disposed of a child.
	ReapOutcome = core.ReapOutcome

	// Interest is a poll interest bitmask.
	Interest = poller.Interest

	// JournalEntry is one recorded spawn or exit event.
	JournalEntry = journal.Entry
)

// The three channels.
const (
	Stdin  = core.Stdin
	Stdout = core.Stdout
	Stderr = core.Stderr
)

// Poll interest bits.
const (
	Readable = poller.Readable
	Writable = poller.Writable
)

// TerminateAndReap outcomes.
const (
	ReapAlreadyReaped   = core.ReapAlreadyReaped
	ReapReaped          = core.ReapReaped
	ReapEscalated       = core.ReapEscalated
	ReapZombieSuspected = core.ReapZombieSuspected
)

// Reactor owns a fixed set of thread-slots and everything shared between
// them: the protocol registry, the scratch working directory, the optional
// journal and instrumentation.
//
// Construction and protocol registration are not safe to run concurrently
// with use. Everything routed through a Slot belongs to the goroutine
// servicing that slot.
type Reactor struct {
	core *core.Context
}

// New builds a Reactor configured by the given options.
//
// Several With* option constructors panic on invalid input (non-positive
// sizes, empty paths). These panics are intentional: option values are
// typically compile-time constants, so an invalid value is a programmer
// error rather than a runtime condition.
func New(ctx context.Context, opts ...Option) (*Reactor, error) {
	cfg := core.Config{
		Slots:           DefaultSlotCount,
		DescriptorLimit: DefaultDescriptorLimit,
		EventBuffer:     DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := core.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Reactor{core: c}, nil
}

// RegisterProtocol adds p to the reactor's protocol registry. The first
// protocol registered becomes the default for spawns that name none.
func (r *Reactor) RegisterProtocol(p *Protocol) error {
	return r.core.RegisterProtocol(p)
}

// Spawn launches a child with its stdin, stdout and stderr piped to three
// descriptors registered on the chosen slot, populating h. Must be called
// from the goroutine servicing that slot.
func (r *Reactor) Spawn(cfg SpawnConfig, h *Handle) error {
	return r.core.Spawn(cfg, h)
}

// Slot returns the i'th thread-slot.
func (r *Reactor) Slot(i int) (*Slot, error) {
	return r.core.Slot(i)
}

// Slots returns the number of thread-slots.
func (r *Reactor) Slots() int {
	return r.core.Slots()
}

// TerminateAndReap drives h's child to a reaped state through signal
// escalation. Pipe descriptors are untouched; drain them, then Destroy.
func (r *Reactor) TerminateAndReap(h *Handle) ReapOutcome {
	return r.core.TerminateAndReap(h)
}

// Destroy closes h's remaining descriptors, removes it from its owner and
// cancels any pending deadline. Idempotent. It does not signal the child.
func (r *Reactor) Destroy(h *Handle) {
	r.core.Destroy(h)
}

// AwaitExit blocks until h's child exit has been collected, polling on the
// given interval up to the timeout.
func (r *Reactor) AwaitExit(ctx context.Context, h *Handle, interval, timeout time.Duration) error {
	return r.core.AwaitExit(ctx, h, interval, timeout)
}

// LiveDescriptors returns the number of descriptors currently registered
// across all slots. Safe from any goroutine.
func (r *Reactor) LiveDescriptors() int64 {
	return r.core.LiveDescriptors()
}

// ScratchPath returns the lock-guarded working directory children start in.
func (r *Reactor) ScratchPath() string {
	return r.core.ScratchPath()
}

// Journal returns the most recent journal entries, newest first, or nil
// when no journal is configured.
func (r *Reactor) Journal(ctx context.Context, limit int) ([]JournalEntry, error) {
	return r.core.Journal(ctx, limit)
}

// Close terminates and reaps every handle still registered in the slots'
// default owners, then releases the poll backends, the journal and the
// scratch directory. Close must not race with Service calls.
func (r *Reactor) Close() error {
	return r.core.Close()
}
