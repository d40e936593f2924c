package core

import (
	"testing"

	"github.com/pipeworks/pipespawn/internal/poller"
)

func TestChannelEnds(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		ch           Channel
		name         string
		retainedEnd  int
		interestWant poller.Interest
	}{
		"stdin is written by the parent": {
			ch:           Stdin,
			name:         "stdin",
			retainedEnd:  1,
			interestWant: poller.Writable,
		},
		"stdout is read by the parent": {
			ch:           Stdout,
			name:         "stdout",
			retainedEnd:  0,
			interestWant: poller.Readable,
		},
		"stderr is read by the parent": {
			ch:           Stderr,
			name:         "stderr",
			retainedEnd:  0,
			interestWant: poller.Readable,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := tc.ch.String(); got != tc.name {
				t.Errorf("String() = %q, want %q", got, tc.name)
			}
			if got := tc.ch.retainedEnd(); got != tc.retainedEnd {
				t.Errorf("retainedEnd() = %d, want %d", got, tc.retainedEnd)
			}
			if got := tc.ch.childEnd(); got != 1-tc.retainedEnd {
				t.Errorf("childEnd() = %d, want %d", got, 1-tc.retainedEnd)
			}
			if got := tc.ch.initialInterest(); got != tc.interestWant {
				t.Errorf("initialInterest() = %v, want %v", got, tc.interestWant)
			}
		})
	}
}

func TestReapOutcomeString(t *testing.T) {
	t.Parallel()

	testCases := map[ReapOutcome]string{
		ReapAlreadyReaped:   "already-reaped",
		ReapReaped:          "reaped",
		ReapEscalated:       "escalated",
		ReapZombieSuspected: "zombie-suspected",
		ReapOutcome(99):     "unknown",
	}
	for outcome, want := range testCases {
		if got := outcome.String(); got != want {
			t.Errorf("ReapOutcome(%d).String() = %q, want %q", int(outcome), got, want)
		}
	}
}
