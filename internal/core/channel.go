package core

import "github.com/pipeworks/pipespawn/internal/poller"

// Channel identifies one of the three fixed communication directions between
// parent and child. The order is meaningful: Stdin is index 0 and is the
// child's input, so the parent retains its write end; the other two flow the
// opposite way.
type Channel int

// The three channels, in wire order.
const (
	Stdin Channel = iota
	Stdout
	Stderr

	numChannels = 3
)

// channels is the iteration order used throughout spawn and teardown.
var channels = [numChannels]Channel{Stdin, Stdout, Stderr}

// String returns the conventional stream name.
func (ch Channel) String() string {
	switch ch {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "invalid"
	}
}

// retainedEnd is the pipe-pair index of the end the parent keeps after
// launch: the write end for stdin, the read end for stdout/stderr.
func (ch Channel) retainedEnd() int {
	if ch == Stdin {
		return 1
	}
	return 0
}

// childEnd is the pipe-pair index of the end redirected onto the child's
// fd 0, 1 or 2.
func (ch Channel) childEnd() int {
	return 1 - ch.retainedEnd()
}

// initialInterest is the poll interest a channel's descriptor is armed with:
// the parent writes stdin, so that descriptor watches for writability; the
// parent reads the other two.
func (ch Channel) initialInterest() poller.Interest {
	if ch == Stdin {
		return poller.Writable
	}
	return poller.Readable
}
