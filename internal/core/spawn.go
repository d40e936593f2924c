package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pipeworks/pipespawn/internal/forkexec"
)

// SpawnConfig describes one child to spawn and how to wire it.
type SpawnConfig struct {
	// Slot selects the thread-slot whose poll table tracks the three
	// descriptors. Spawn must be called from that slot's goroutine.
	Slot int

	// Owner optionally registers the handle in a caller-owned collection.
	// When nil the handle goes into the slot's default owner, which
	// Context.Close tears down.
	Owner *Owner

	// Parent optionally links the three new descriptors as children of an
	// existing descriptor in the relation tree. A relationship for bulk
	// traversal, not an ownership transfer.
	Parent *Descriptor

	// Argv is the executable and argument vector. Argv[0] is resolved via
	// the search path when it contains no slash.
	Argv []string

	// Env is the child environment as KEY=VALUE strings.
	Env []string

	// Protocol names the handler set bound to all three descriptors.
	// Empty selects the first registered protocol.
	Protocol string

	// Timeout, when positive, schedules OnTimeout to fire once unless the
	// deadline is canceled (or the handle destroyed) first.
	Timeout time.Duration

	// OnTimeout is the deadline callback. When nil and Timeout is set, the
	// default callback terminates, reaps and destroys the handle.
	OnTimeout func(h *Handle)

	// GroupKill detaches the child into its own process group, keeping
	// terminal interrupt signals aimed at the parent away from it and
	// letting termination target the whole group.
	GroupKill bool
}

// Spawn launches a child with its stdin/stdout/stderr piped to three
// descriptors registered on the chosen slot, populating the caller-supplied
// handle. On any pre-duplication failure everything acquired so far is
// released in reverse acquisition order and a tagged error is returned; the
// reactor's descriptor accounting is unchanged.
//
// Once the duplication succeeds Spawn always returns nil. A child that fails
// to exec dies with the configured failure status, observable later through
// reaping; that is not a Spawn error.
func (c *Context) Spawn(cfg SpawnConfig, h *Handle) (err error) {
	defer func() {
		if err != nil {
			c.metrics.spawnFailed()
		}
	}()
	if len(cfg.Argv) == 0 {
		return ErrEmptyArgv
	}
	s, err := c.Slot(cfg.Slot)
	if err != nil {
		return err
	}

	// Resolved before any pipe exists, per the launch contract.
	proto, err := c.lookupProtocol(cfg.Protocol)
	if err != nil {
		return err
	}

	// Preflight the whole triplet against the table headroom so exhaustion
	// is reported before a single pipe is created.
	if s.tableCount+numChannels >= s.limit {
		return fmt.Errorf("slot %d (%d/%d, need %d): %w",
			s.index, s.tableCount, s.limit, numChannels, ErrResourceExhausted)
	}

	initHandle(h, s, cfg)

	u := newUnwinder()
	defer u.run()

	if err := buildPipeTriplet(h); err != nil {
		return err
	}
	u.push(func() { closePipeTriplet(h) })

	for _, ch := range channels {
		d, err := s.newDescriptor()
		if err != nil {
			return err
		}
		u.push(func() { s.destroyDescriptor(d) })
		d.channel = ch
		d.handle = h
		d.protocol = proto
		d.fd = h.pipes[ch][ch.retainedEnd()]
		h.stdio[ch] = d
	}

	for _, ch := range channels {
		d := h.stdio[ch]
		if err := s.tableInsert(d, ch.initialInterest()); err != nil {
			return err
		}
		if cfg.Parent != nil {
			d.linkUnder(cfg.Parent)
		}
	}

	// Re-arm the reversed interest explicitly: stdin watches writability,
	// the output channels watch readability, whatever the backend's
	// insertion default was.
	for _, ch := range channels {
		if err := s.SetInterest(h.stdio[ch], ch.initialInterest()); err != nil {
			return err
		}
	}

	cmd := forkexec.Command{
		Argv: cfg.Argv,
		Env:  cfg.Env,
		Dir:  c.scratchPath(),
		Stdio: [3]int{
			h.pipes[Stdin][Stdin.childEnd()],
			h.pipes[Stdout][Stdout.childEnd()],
			h.pipes[Stderr][Stderr.childEnd()],
		},
		CloseFDs: []int{
			h.pipes[Stdin][0], h.pipes[Stdin][1],
			h.pipes[Stdout][0], h.pipes[Stdout][1],
			h.pipes[Stderr][0], h.pipes[Stderr][1],
		},
		Setpgid:    cfg.GroupKill,
		Pdeathsig:  c.cfg.ParentDeathSignal,
		FailStatus: c.cfg.ExecFailStatus,
	}
	pid, err := forkexec.Start(&cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDuplicationFailed, err)
	}
	h.pid = pid

	// The child holds copies of all six fds across the duplication; only
	// now may the parent drop its unused halves. The retained halves are
	// marked close-on-exec so no future fork leaks them.
	for _, ch := range channels {
		sysCloseOnExec(h.pipes[ch][ch.retainedEnd()])
		_ = sysClose(h.pipes[ch][ch.childEnd()])
		h.pipes[ch][ch.childEnd()] = invalidFD
	}

	u.disarm()

	if cfg.Owner != nil {
		cfg.Owner.addHead(h)
	} else {
		s.handles.addHead(h)
	}

	if cfg.Timeout > 0 {
		onTimeout := cfg.OnTimeout
		if onTimeout == nil {
			onTimeout = func(h *Handle) {
				c.TerminateAndReap(h)
				c.Destroy(h)
			}
		}
		s.Schedule(&h.deadline, func() { onTimeout(h) }, cfg.Timeout)
	}

	c.metrics.spawned()
	c.journal.RecordSpawn(h.id, pid, cfg.Argv)
	Logger().Info("spawned child",
		"handle", h.id, "pid", pid, "slot", s.index,
		"argv0", cfg.Argv[0], "group_kill", cfg.GroupKill)
	return nil
}

// initHandle resets the caller-supplied handle for a fresh spawn attempt.
func initHandle(h *Handle, s *Slot, cfg SpawnConfig) {
	*h = Handle{
		id:        uuid.NewString(),
		slot:      s,
		groupKill: cfg.GroupKill,
		argv:      cfg.Argv,
	}
	initDeadline(&h.deadline)
	for i := range h.pipes {
		h.pipes[i][0] = invalidFD
		h.pipes[i][1] = invalidFD
	}
}
