package core

import (
	"context"
	"strconv"
	"time"

	"github.com/pipeworks/pipespawn/internal/procwait"
)

// ReapOutcome reports how TerminateAndReap disposed of a child.
type ReapOutcome int

const (
	// ReapAlreadyReaped means the child's exit was already collected, by an
	// earlier call or by PollExit.
	ReapAlreadyReaped ReapOutcome = iota

	// ReapReaped means the child was collected without escalating: either
	// the first wait found it already exited, or it died on the first
	// signal that was delivered.
	ReapReaped

	// ReapEscalated means the child survived the first delivered signal
	// and needed at least one more before the wait succeeded.
	ReapEscalated

	// ReapZombieSuspected means every signal tier was exhausted and the
	// child still did not become waitable.
	ReapZombieSuspected
)

func (o ReapOutcome) String() string {
	switch o {
	case ReapAlreadyReaped:
		return "already-reaped"
	case ReapReaped:
		return "reaped"
	case ReapEscalated:
		return "escalated"
	case ReapZombieSuspected:
		return "zombie-suspected"
	}
	return "unknown"
}

// TerminateAndReap drives the child to a reaped state, escalating through
// SIGTERM (process group, then process), SIGPIPE and finally SIGKILL. Each
// signal gets a short bounded grace during which the exit is probed with
// non-blocking waits, so the call blocks for at most a few hundred
// milliseconds even against a signal-ignoring child. Whatever the outcome,
// the handle's pid is invalidated so later calls are no-ops.
//
// Pipe descriptors are untouched; close them via Destroy so buffered output
// from a killed child can still be drained first.
func (c *Context) TerminateAndReap(h *Handle) ReapOutcome {
	if h == nil || h.pid <= 0 {
		return ReapAlreadyReaped
	}
	pid := h.pid
	outcome := ReapZombieSuspected

	if res, status := sysWaitNoHang(pid); res != waitLive {
		c.settle(h, res, status, ReapReaped)
		return ReapReaped
	}

	// Skipped tiers (no group to signal) and failed deliveries do not count
	// toward escalation: a child only escalates by surviving a signal that
	// was actually delivered.
	signaled := 0
	for _, t := range signalTiers {
		target := pid
		if t.group {
			if !h.groupKill {
				continue
			}
			target = -pid
		}
		if err := sysKill(target, t.sig); err != nil {
			Logger().Debug("signal delivery failed",
				"handle", h.id, "pid", pid, "signal", t.name, "error", err)
			continue
		}
		signaled++
		if res, status := waitWithGrace(pid, tierGrace); res != waitLive {
			if signaled == 1 {
				outcome = ReapReaped
			} else {
				outcome = ReapEscalated
				c.metrics.escalated()
			}
			c.settle(h, res, status, outcome)
			return outcome
		}
	}

	// All tiers exhausted. Drain anything the group produced so no zombie
	// lingers if the signals land late.
	c.drainGroup(h)
	if h.pid <= 0 {
		return ReapEscalated
	}

	h.pid = -1
	c.metrics.reaped()
	c.journal.RecordExit(h.id, pid, -1, outcome.String())
	Logger().Warn("child unresponsive to all signals",
		"handle", h.id, "pid", pid)
	return outcome
}

// tierGrace bounds how long one escalation tier waits for its signal to
// take effect before the next tier fires.
const tierGrace = 150 * time.Millisecond

// waitWithGrace probes the child with non-blocking waits until it stops
// being live or the grace elapses.
func waitWithGrace(pid int, grace time.Duration) (waitResult, int) {
	deadline := time.Now().Add(grace)
	for {
		res, status := sysWaitNoHang(pid)
		if res != waitLive || !time.Now().Before(deadline) {
			return res, status
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// settle records a collected exit on the handle and in the telemetry.
func (c *Context) settle(h *Handle, res waitResult, status int, outcome ReapOutcome) {
	pid := h.pid
	h.pid = -1
	if res == waitReaped {
		h.exitStatus = status
		h.exitValid = true
	}
	c.metrics.reaped()
	c.journal.RecordExit(h.id, pid, status, outcome.String())
	Logger().Info("reaped child",
		"handle", h.id, "pid", pid, "status", status, "outcome", outcome.String())
}

// drainGroup collects every waitable process in the child's group, then the
// child itself, looping while anything is collectable.
func (c *Context) drainGroup(h *Handle) {
	pid := h.pid
	if pid <= 0 {
		return
	}
	for {
		progress := false
		if h.groupKill {
			if res, _ := sysWaitNoHang(-pid); res == waitReaped {
				progress = true
			}
		}
		res, status := sysWaitNoHang(pid)
		switch res {
		case waitReaped:
			c.settle(h, res, status, ReapEscalated)
			return
		case waitGone:
			if h.pid > 0 {
				c.settle(h, res, status, ReapEscalated)
			}
			return
		}
		if !progress {
			return
		}
	}
}

// AwaitExit blocks until the child's exit has been collected, polling
// PollExit on the given interval up to the timeout. Unlike the reactor-side
// operations it may be called from any goroutine only while no slot is
// concurrently servicing the same handle.
func (c *Context) AwaitExit(ctx context.Context, h *Handle, interval, timeout time.Duration) error {
	return procwait.Until(ctx, procwait.Config{
		Interval: interval,
		Timeout:  timeout,
		Name:     "child exit pid " + strconv.Itoa(h.pid),
		Logger:   Logger(),
	}, func(context.Context, int) (bool, error) {
		return h.PollExit(), nil
	})
}
