package core

// unwinder collects release steps during a multi-stage acquisition and runs
// them in reverse order if the acquisition does not reach disarm. Used with
// defer so that every early return releases exactly what was taken, without
// per-return cleanup blocks:
//
//	u := newUnwinder()
//	defer u.run()
//	... acquire; u.push(release) ...
//	u.disarm() // success: nothing is released
type unwinder struct {
	steps []func()
	armed bool
}

func newUnwinder() *unwinder {
	return &unwinder{armed: true}
}

// push records a release step for the most recent acquisition.
func (u *unwinder) push(fn func()) {
	u.steps = append(u.steps, fn)
}

// disarm marks the acquisition successful; run becomes a no-op.
func (u *unwinder) disarm() {
	u.armed = false
}

// run executes the recorded steps most-recent-first. No-op once disarmed.
func (u *unwinder) run() {
	if !u.armed {
		return
	}
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
}
