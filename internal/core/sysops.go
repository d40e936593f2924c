package core

// invalidFD is the sentinel stored wherever a raw fd has been closed or was
// never opened. Single-use close discipline: every close sets the slot that
// held the fd to invalidFD, so no fd can be closed twice.
const invalidFD = -1

// waitResult classifies one non-blocking wait attempt.
type waitResult int

const (
	// waitLive: the target exists but has not exited.
	waitLive waitResult = iota
	// waitReaped: a child was reaped and its status collected.
	waitReaped
	// waitGone: the kernel knows no such child (already reaped, or the
	// target process group never existed).
	waitGone
)

// signalTier is one step of the escalating termination sequence. group
// targets the negated pid, signalling the whole process group.
type signalTier struct {
	group bool
	sig   int
	name  string
}
