package core

import (
	"fmt"

	"github.com/pipeworks/pipespawn/internal/poller"
)

// Descriptor is the reactor's generic handle around one raw fd, tracked in a
// slot's poll table. Spawn binds one Descriptor to the parent-retained end of
// each of the three pipe channels. Only the factory below constructs them.
type Descriptor struct {
	slot     *Slot
	fd       int
	channel  Channel
	protocol *Protocol
	handle   *Handle

	inTable   bool
	destroyed bool
	interest  poller.Interest

	// Parent/sibling/child links form a relation tree used for traversal
	// during bulk teardown elsewhere. They never control lifetimes.
	parent  *Descriptor
	sibling *Descriptor
	child   *Descriptor
}

// FD returns the raw fd, or -1 after the descriptor was destroyed.
func (d *Descriptor) FD() int { return d.fd }

// Channel returns which std channel this descriptor carries.
func (d *Descriptor) Channel() Channel { return d.channel }

// Handle returns the spawn handle this descriptor belongs to.
func (d *Descriptor) Handle() *Handle { return d.handle }

// newDescriptor allocates a quiescent descriptor: no poll-table position, no
// protocol, fd invalid. The capacity check reserves one table slot of
// headroom, mirroring the check Spawn performs up front for the whole
// triplet. Side effect: the context-wide live descriptor count rises.
func (s *Slot) newDescriptor() (*Descriptor, error) {
	if s.tableCount >= s.limit-1 {
		return nil, fmt.Errorf("slot %d (%d/%d): %w", s.index, s.tableCount, s.limit, ErrResourceExhausted)
	}
	d := &Descriptor{slot: s, fd: invalidFD}
	s.ctx.liveDescriptors.Add(1)
	s.ctx.metrics.descriptorOpened()
	return d, nil
}

// destroyDescriptor removes d from the poll table if present, closes its fd
// exactly once, unlinks it from the relation tree, and releases the live
// descriptor count. Idempotent, including for descriptors whose fd was never
// assigned.
func (s *Slot) destroyDescriptor(d *Descriptor) {
	if d == nil || d.destroyed {
		return
	}
	d.destroyed = true

	if d.inTable {
		s.tableRemove(d)
	}
	if d.fd >= 0 {
		if err := sysClose(d.fd); err != nil {
			Logger().Warn("descriptor close failed", "fd", d.fd, "channel", d.channel.String(), "err", err)
		}
		// Keep the handle's view consistent: this fd must not be closed
		// again by handle teardown.
		if d.handle != nil {
			d.handle.pipes[d.channel][d.channel.retainedEnd()] = invalidFD
		}
		d.fd = invalidFD
	}
	d.unlinkTree()

	s.ctx.liveDescriptors.Add(-1)
	s.ctx.metrics.descriptorClosed()
}

// linkUnder records d as a child of parent in the relation tree.
func (d *Descriptor) linkUnder(parent *Descriptor) {
	d.parent = parent
	d.sibling = parent.child
	parent.child = d
}

// unlinkTree detaches d from its parent's child list, if any.
func (d *Descriptor) unlinkTree() {
	if d.parent == nil {
		return
	}
	p := &d.parent.child
	for *p != nil {
		if *p == d {
			*p = d.sibling
			break
		}
		p = &(*p).sibling
	}
	d.parent = nil
	d.sibling = nil
}
