package core

import (
	"fmt"
	"time"

	"github.com/pipeworks/pipespawn/internal/poller"
)

// Slot is one reactor thread-slot: a poll table with a capacity, the
// descriptors registered in it, pending deadlines, and the default owner
// collection for handles spawned without an explicit one.
//
// All methods must be called from the single goroutine servicing the slot.
type Slot struct {
	ctx   *Context
	index int

	poller     *poller.Poller
	byFD       map[int]*Descriptor
	tableCount int
	limit      int

	deadlines deadlineHeap
	handles   Owner

	events []poller.Event

	// preRegister is the optional backend hook invoked before a descriptor
	// enters the poll table, for backends that need a pre-accept step.
	preRegister func(*Descriptor) error
}

// Index returns the slot's position within its context.
func (s *Slot) Index() int { return s.index }

// TableCount reports how many descriptors currently occupy the poll table.
func (s *Slot) TableCount() int { return s.tableCount }

// Handles returns the slot's default owner collection.
func (s *Slot) Handles() *Owner { return &s.handles }

// tableInsert runs the optional backend hook, then enters d into the poll
// table armed with the given interest.
func (s *Slot) tableInsert(d *Descriptor, in poller.Interest) error {
	if s.preRegister != nil {
		if err := s.preRegister(d); err != nil {
			return fmt.Errorf("%w: backend hook: %w", ErrRegistrationFailed, err)
		}
	}
	if err := s.poller.Add(d.fd, in); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	d.inTable = true
	d.interest = in
	s.byFD[d.fd] = d
	s.tableCount++
	return nil
}

// tableRemove takes d out of the poll table. Removal failures are logged and
// swallowed: by the time removal matters the fd is on its way to being
// closed, which detaches it from the poller anyway.
func (s *Slot) tableRemove(d *Descriptor) {
	if !d.inTable {
		return
	}
	if err := s.poller.Remove(d.fd); err != nil {
		Logger().Debug("poll table removal failed", "fd", d.fd, "err", err)
	}
	delete(s.byFD, d.fd)
	d.inTable = false
	s.tableCount--
}

// SetInterest re-arms d's poll interest. Registration must have completed
// first; arming an untracked descriptor is a registration failure.
func (s *Slot) SetInterest(d *Descriptor, in poller.Interest) error {
	if !d.inTable {
		return fmt.Errorf("%w: descriptor not in poll table", ErrRegistrationFailed)
	}
	if err := s.poller.Modify(d.fd, in); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	d.interest = in
	return nil
}

// Service performs one poll-and-dispatch step: wait at most timeout (clamped
// to the earliest pending deadline; negative means wait for the deadline or
// forever), dispatch protocol handlers for every ready descriptor, then fire
// due deadlines. It returns the number of descriptor events dispatched.
//
// Service never blocks past timeout and performs no I/O itself; handlers own
// all reading and writing, on this same goroutine.
func (s *Slot) Service(timeout time.Duration) (int, error) {
	wait := timeout
	if next, ok := s.nextDeadline(); ok {
		until := time.Until(next)
		if until < 0 {
			until = 0
		}
		if wait < 0 || until < wait {
			wait = until
		}
	}

	n, err := s.poller.Wait(s.events, wait)
	if err != nil {
		return 0, fmt.Errorf("slot %d service: %w", s.index, err)
	}

	for i := 0; i < n; i++ {
		ev := s.events[i]
		d := s.byFD[ev.FD]
		if d == nil || d.destroyed || d.protocol == nil {
			continue
		}
		p := d.protocol
		if ev.Ready&poller.Readable != 0 && p.OnReadable != nil {
			p.OnReadable(d)
		}
		if d.destroyed {
			continue
		}
		if ev.Ready&poller.Writable != 0 && p.OnWritable != nil {
			p.OnWritable(d)
		}
		if d.destroyed {
			continue
		}
		if (ev.HangUp || ev.IsError) && p.OnHangUp != nil {
			p.OnHangUp(d)
		}
	}

	s.fireDue(time.Now())
	return n, nil
}
