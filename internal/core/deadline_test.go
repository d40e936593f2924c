package core

import (
	"testing"
	"time"
)

func TestDeadlineFiresExactlyOnce(t *testing.T) {
	t.Parallel()
	s := &Slot{}
	var d Deadline
	initDeadline(&d)

	fired := 0
	s.Schedule(&d, func() { fired++ }, time.Millisecond)

	due := time.Now().Add(time.Second)
	s.fireDue(due)
	s.fireDue(due)
	if fired != 1 {
		t.Fatalf("deadline fired %d times, want 1", fired)
	}
}

func TestDeadlineCancel(t *testing.T) {
	t.Parallel()
	s := &Slot{}
	var d Deadline
	initDeadline(&d)

	fired := 0
	s.Schedule(&d, func() { fired++ }, time.Millisecond)
	s.Cancel(&d)
	s.fireDue(time.Now().Add(time.Second))
	if fired != 0 {
		t.Fatalf("canceled deadline fired %d times, want 0", fired)
	}

	// Canceling an unscheduled deadline is always safe.
	s.Cancel(&d)
}

func TestDeadlineRescheduleReplaces(t *testing.T) {
	t.Parallel()
	s := &Slot{}
	var d Deadline
	initDeadline(&d)

	var got string
	s.Schedule(&d, func() { got = "first" }, time.Millisecond)
	s.Schedule(&d, func() { got = "second" }, 2*time.Millisecond)
	s.fireDue(time.Now().Add(time.Second))
	if got != "second" {
		t.Fatalf("fired callback = %q, want %q", got, "second")
	}
	if len(s.deadlines) != 0 {
		t.Fatalf("heap still holds %d deadlines, want 0", len(s.deadlines))
	}
}

func TestDeadlineZeroDelayIsCancel(t *testing.T) {
	t.Parallel()
	s := &Slot{}
	var d Deadline
	initDeadline(&d)

	fired := false
	s.Schedule(&d, func() { fired = true }, time.Millisecond)
	s.Schedule(&d, func() { fired = true }, 0)
	s.fireDue(time.Now().Add(time.Second))
	if fired {
		t.Fatal("deadline fired after zero-delay cancel")
	}
}

func TestDeadlineOrdering(t *testing.T) {
	t.Parallel()
	s := &Slot{}

	var order []int
	ds := make([]Deadline, 3)
	delays := []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}
	for i := range ds {
		initDeadline(&ds[i])
		s.Schedule(&ds[i], func() { order = append(order, i) }, delays[i])
	}

	s.fireDue(time.Now().Add(time.Second))
	want := []int{1, 2, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fire order = %v, want %v", order, want)
		}
	}
}
