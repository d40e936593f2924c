package core

import (
	"container/heap"
	"time"
)

// Deadline is one schedulable timeout owned by a handle. At most one is
// active per handle; rescheduling replaces the previous one. The zero value
// is valid and unscheduled after initDeadline.
type Deadline struct {
	when time.Time
	cb   func()
	pos  int // heap position, unscheduledPos when inactive
}

const unscheduledPos = -1

func initDeadline(d *Deadline) {
	d.pos = unscheduledPos
	d.cb = nil
}

// deadlineHeap orders deadlines by due time. Implements heap.Interface;
// only the slot scheduler below touches it.
type deadlineHeap []*Deadline

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].pos = i; h[j].pos = j }
func (h *deadlineHeap) Push(x any) { d := x.(*Deadline); d.pos = len(*h); *h = append(*h, d) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	d.pos = unscheduledPos
	*h = old[:n-1]
	return d
}

// Schedule arms d to fire cb after the given delay, replacing any pending
// schedule of the same deadline. A delay <= 0 is the cancel sentinel: the
// deadline is disarmed and cb ignored. Cancellation is synchronous and
// always safe, including for a deadline that was never scheduled.
func (s *Slot) Schedule(d *Deadline, cb func(), after time.Duration) {
	if d.pos != unscheduledPos {
		heap.Remove(&s.deadlines, d.pos)
	}
	if after <= 0 {
		d.cb = nil
		return
	}
	d.cb = cb
	d.when = time.Now().Add(after)
	heap.Push(&s.deadlines, d)
}

// Cancel disarms d. Equivalent to Schedule with the cancel sentinel.
func (s *Slot) Cancel(d *Deadline) {
	s.Schedule(d, nil, 0)
}

// nextDeadline reports the earliest pending due time.
func (s *Slot) nextDeadline() (time.Time, bool) {
	if len(s.deadlines) == 0 {
		return time.Time{}, false
	}
	return s.deadlines[0].when, true
}

// fireDue pops and invokes every deadline due at now. A deadline is removed
// from the heap before its callback runs, so it fires exactly once unless
// explicitly rescheduled.
func (s *Slot) fireDue(now time.Time) {
	for len(s.deadlines) > 0 && !s.deadlines[0].when.After(now) {
		d := heap.Pop(&s.deadlines).(*Deadline)
		cb := d.cb
		d.cb = nil
		if cb != nil {
			cb()
		}
	}
}
