package core

// Owner is an intrusive collection of spawn handles. Membership lives in the
// handles themselves, so adding and removing never allocates and a handle can
// belong to at most one owner at a time.
//
// An Owner is bound to the thread-slot of the handles registered in it; like
// every other slot structure it is unsynchronized and relies on slot
// affinity.
type Owner struct {
	head  *Handle
	count int
}

// Len reports how many handles are registered.
func (o *Owner) Len() int { return o.count }

// addHead registers h at the head of the list. A handle already registered
// elsewhere is removed from its current owner first, preserving the
// at-most-one-owner invariant.
func (o *Owner) addHead(h *Handle) {
	if h.owner != nil {
		h.owner.remove(h)
	}
	h.ownerNext = o.head
	h.ownerPrev = nil
	if o.head != nil {
		o.head.ownerPrev = h
	}
	o.head = h
	h.owner = o
	o.count++
}

// remove unregisters h. No-op when h is not registered in o.
func (o *Owner) remove(h *Handle) {
	if h.owner != o {
		return
	}
	if h.ownerPrev != nil {
		h.ownerPrev.ownerNext = h.ownerNext
	} else {
		o.head = h.ownerNext
	}
	if h.ownerNext != nil {
		h.ownerNext.ownerPrev = h.ownerPrev
	}
	h.ownerPrev = nil
	h.ownerNext = nil
	h.owner = nil
	o.count--
}

// snapshot returns the registered handles as a slice, so callers can tear
// them down while iterating without walking links that teardown unlinks.
func (o *Owner) snapshot() []*Handle {
	out := make([]*Handle, 0, o.count)
	for h := o.head; h != nil; h = h.ownerNext {
		out = append(out, h)
	}
	return out
}
