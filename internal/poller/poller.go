package poller

import "github.com/pipeworks/pipespawn/internal/sentinel"

// ErrUnsupported is returned by Open on platforms without a readiness
// facility implementation.
const ErrUnsupported = sentinel.Error("poller not supported on this platform")

// Interest is a set of readiness conditions a descriptor is armed for.
type Interest uint8

// Interest bits. None is valid: the descriptor stays in the table but
// produces no events until re-armed.
const (
	None     Interest = 0
	Readable Interest = 1 << 0
	Writable Interest = 1 << 1
)

// Event is one readiness report from Wait.
//
// HangUp is reported independently of the armed interest set: a pipe whose
// peer closed raises it even when the descriptor is armed for nothing. Callers
// typically treat HangUp on a read descriptor as "drain then close".
type Event struct {
	FD      int
	Ready   Interest
	HangUp  bool
	IsError bool
}
