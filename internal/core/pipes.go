package core

import "fmt"

// buildPipeTriplet creates the three channel pipes on h and puts every
// parent-retained end into non-blocking mode. Atomic: on any failure every
// fd opened so far is closed before the tagged error is returned, leaving no
// partial pipe set behind.
func buildPipeTriplet(h *Handle) error {
	for i := range h.pipes {
		h.pipes[i][0] = invalidFD
		h.pipes[i][1] = invalidFD
	}

	for _, ch := range channels {
		if err := sysPipe(&h.pipes[ch]); err != nil {
			closePipeTriplet(h)
			return fmt.Errorf("%w: %s: %w", ErrPipeCreationFailed, ch, err)
		}
	}

	// Non-blocking is a hard precondition for the reactor: nothing may ever
	// block on these fds. Only the retained ends need it; the child's ends
	// are redirected onto its 0/1/2 and may stay blocking there.
	for _, ch := range channels {
		if err := sysSetNonblock(h.pipes[ch][ch.retainedEnd()]); err != nil {
			closePipeTriplet(h)
			return fmt.Errorf("%w: %s: %w", ErrNonBlockingSetupFailed, ch, err)
		}
	}
	return nil
}

// closePipeTriplet closes every pipe fd on h that is still valid, both
// halves, and marks them invalid.
func closePipeTriplet(h *Handle) {
	for i := range h.pipes {
		for end := 0; end < 2; end++ {
			if h.pipes[i][end] >= 0 {
				_ = sysClose(h.pipes[i][end])
				h.pipes[i][end] = invalidFD
			}
		}
	}
}
