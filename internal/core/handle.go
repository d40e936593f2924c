package core

// Handle represents one spawned child and its three communication channels.
// The caller allocates it (typically embedded in its own session struct) and
// passes it to Spawn, which populates it; the zero value is inert.
//
// A Handle is bound to the thread-slot it was spawned on and must only be
// touched from that slot's goroutine.
type Handle struct {
	id   string
	slot *Slot

	// pid is the child process id. <= 0 means no live child is tracked;
	// reaping sets it to -1.
	pid int

	exitStatus int
	exitValid  bool

	// pipes holds each channel's [read, write] fd pair. Before launch both
	// halves are valid; after launch only the retained half remains, the
	// other is closed and marked invalid.
	pipes [numChannels][2]int

	// stdio are the three descriptors bound to the retained pipe ends.
	stdio [numChannels]*Descriptor

	owner                *Owner
	ownerPrev, ownerNext *Handle

	deadline  Deadline
	groupKill bool
	argv      []string
}

// ID returns the handle's identity string, assigned at spawn.
func (h *Handle) ID() string { return h.id }

// PID returns the child pid, or -1 once reaped, or 0 if never spawned.
func (h *Handle) PID() int { return h.pid }

// Argv returns the argument vector the child was spawned with.
func (h *Handle) Argv() []string { return h.argv }

// Descriptor returns the descriptor bound to the given channel, or nil
// before a successful spawn.
func (h *Handle) Descriptor(ch Channel) *Descriptor {
	if ch < 0 || ch >= numChannels {
		return nil
	}
	return h.stdio[ch]
}

// ExitStatus returns the child's recorded exit status. Valid only after a
// wait has collected it (PollExit, AwaitExit or TerminateAndReap). A child
// killed by a signal reports 128+signal, the shell convention.
func (h *Handle) ExitStatus() (int, bool) {
	return h.exitStatus, h.exitValid
}

// PollExit performs one non-blocking wait for the child. It reports true
// when no live child remains: the wait collected the exit (recording its
// status), something else already reaped it, or none was ever tracked.
func (h *Handle) PollExit() bool {
	if h.pid <= 0 {
		return true
	}
	switch res, status := sysWaitNoHang(h.pid); res {
	case waitReaped:
		h.exitStatus = status
		h.exitValid = true
		h.slot.ctx.noteExit(h, status, "exited")
		h.pid = -1
		return true
	case waitGone:
		h.pid = -1
		return true
	default:
		return false
	}
}

// Destroy tears the handle down: closes the remaining retained fds (through
// descriptor destruction so the poll table stays consistent), removes the
// handle from its owner collection, and cancels any scheduled deadline.
// Idempotent: a second call finds nothing to close and does nothing.
//
// Destroy does not signal or reap the child; pair it with TerminateAndReap
// when the child should not outlive the handle.
func (c *Context) Destroy(h *Handle) {
	if h.slot == nil {
		return
	}
	for _, ch := range channels {
		fd := h.pipes[ch][ch.retainedEnd()]
		if fd == 0 {
			// fd 0 can only appear here through a double-close bug that let
			// the slot be reused; never close it.
			Logger().Error("zero fd in spawn teardown", "handle", h.id, "channel", ch.String())
			continue
		}
		if d := h.stdio[ch]; d != nil {
			h.slot.destroyDescriptor(d)
			h.stdio[ch] = nil
		} else if fd > 0 {
			_ = sysClose(fd)
		}
		h.pipes[ch][ch.retainedEnd()] = invalidFD
	}
	if h.owner != nil {
		h.owner.remove(h)
	}
	h.slot.Cancel(&h.deadline)
}
