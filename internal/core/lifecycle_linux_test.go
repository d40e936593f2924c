//go:build linux

package core

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestTerminateAndReapCollectsLiveChild(t *testing.T) {
	c := newTestContext(t, Config{})
	if err := c.RegisterProtocol(&Protocol{Name: "noop"}); err != nil {
		t.Fatalf("RegisterProtocol: %v", err)
	}

	var h Handle
	if err := c.Spawn(SpawnConfig{Argv: []string{"/bin/sleep", "30"}}, &h); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// A cooperative child dying on the sole delivered SIGTERM is a plain
	// reap, never an escalation.
	if outcome := c.TerminateAndReap(&h); outcome != ReapReaped {
		t.Fatalf("TerminateAndReap = %s, want %s", outcome, ReapReaped)
	}
	if h.PID() != -1 {
		t.Fatalf("PID() = %d after reap, want -1", h.PID())
	}
	if got := c.TerminateAndReap(&h); got != ReapAlreadyReaped {
		t.Fatalf("second TerminateAndReap = %s, want %s", got, ReapAlreadyReaped)
	}
	c.Destroy(&h)
}

func TestTerminateAndReapExitedChild(t *testing.T) {
	c := newTestContext(t, Config{})
	if err := c.RegisterProtocol(&Protocol{Name: "noop"}); err != nil {
		t.Fatalf("RegisterProtocol: %v", err)
	}

	var h Handle
	if err := c.Spawn(SpawnConfig{Argv: []string{"/bin/true"}}, &h); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// Give the child time to exit; the first wait should then collect it
	// without any signal.
	time.Sleep(100 * time.Millisecond)
	if got := c.TerminateAndReap(&h); got != ReapReaped {
		t.Fatalf("TerminateAndReap = %s, want %s", got, ReapReaped)
	}
	if status, ok := h.ExitStatus(); !ok || status != 0 {
		t.Fatalf("ExitStatus() = %d, %t, want 0, true", status, ok)
	}
	c.Destroy(&h)
}

func TestTerminateAndReapGroupKill(t *testing.T) {
	c := newTestContext(t, Config{})
	if err := c.RegisterProtocol(&Protocol{Name: "noop"}); err != nil {
		t.Fatalf("RegisterProtocol: %v", err)
	}

	var h Handle
	err := c.Spawn(SpawnConfig{
		Argv:      []string{"/bin/sleep", "30"},
		GroupKill: true,
	}, &h)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// Whether the group SIGTERM lands or the bare-pid retry does, the
	// first delivered signal killing the child is still a plain reap.
	if outcome := c.TerminateAndReap(&h); outcome != ReapReaped {
		t.Fatalf("TerminateAndReap = %s, want %s", outcome, ReapReaped)
	}
	c.Destroy(&h)
}

func TestTerminateAndReapEscalatesPastIgnoredSignals(t *testing.T) {
	c := newTestContext(t, Config{})

	// Readiness gate: signal dispositions are only in place once the child
	// has echoed, so the SIGTERM below cannot race the trap setup.
	ready := false
	err := c.RegisterProtocol(&Protocol{
		Name: "readiness",
		OnReadable: func(d *Descriptor) {
			buf := make([]byte, 16)
			if n, _ := unix.Read(d.FD(), buf); n > 0 && d.Channel() == Stdout {
				ready = true
			}
		},
	})
	if err != nil {
		t.Fatalf("RegisterProtocol: %v", err)
	}

	var h Handle
	err = c.Spawn(SpawnConfig{
		Argv: []string{"/bin/sh", "-c", `trap "" TERM PIPE; echo ready; exec sleep 30`},
		Env:  []string{"PATH=/usr/bin:/bin"},
	}, &h)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	s, _ := c.Slot(0)
	serviceUntil(t, s, func() bool { return ready }, 5*time.Second)

	// SIGTERM and SIGPIPE are ignored; only the SIGKILL tier can land.
	if outcome := c.TerminateAndReap(&h); outcome != ReapEscalated {
		t.Fatalf("TerminateAndReap = %s, want %s", outcome, ReapEscalated)
	}
	if h.PID() != -1 {
		t.Fatalf("PID() = %d after escalation, want -1", h.PID())
	}
	if status, ok := h.ExitStatus(); !ok || status != 128+int(unix.SIGKILL) {
		t.Fatalf("ExitStatus() = %d, %t, want %d, true", status, ok, 128+int(unix.SIGKILL))
	}
	c.Destroy(&h)
}

func TestContextCloseReapsSurvivors(t *testing.T) {
	c := newTestContext(t, Config{})
	if err := c.RegisterProtocol(&Protocol{Name: "noop"}); err != nil {
		t.Fatalf("RegisterProtocol: %v", err)
	}

	handles := make([]*Handle, 3)
	for i := range handles {
		handles[i] = new(Handle)
		if err := c.Spawn(SpawnConfig{Argv: []string{"/bin/sleep", "30"}}, handles[i]); err != nil {
			t.Fatalf("Spawn %d: %v", i, err)
		}
	}
	s, _ := c.Slot(0)
	if got := s.Handles().Len(); got != 3 {
		t.Fatalf("Handles().Len() = %d, want 3", got)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for i, h := range handles {
		if h.PID() > 0 {
			t.Errorf("handle %d: PID() = %d after Close, want reaped", i, h.PID())
		}
	}
	if n := c.LiveDescriptors(); n != 0 {
		t.Fatalf("LiveDescriptors() = %d after Close, want 0", n)
	}
}
