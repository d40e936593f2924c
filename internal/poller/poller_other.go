//go:build !linux

package poller

import "time"

// Poller is a stub on platforms without an implementation.
type Poller struct{}

// Open reports the platform as unsupported.
func Open() (*Poller, error) {
	return nil, ErrUnsupported
}

// Add is unreachable on this platform; Open never yields a Poller.
func (p *Poller) Add(fd int, in Interest) error { return ErrUnsupported }

// Modify is unreachable on this platform.
func (p *Poller) Modify(fd int, in Interest) error { return ErrUnsupported }

// Remove is unreachable on this platform.
func (p *Poller) Remove(fd int) error { return ErrUnsupported }

// Wait is unreachable on this platform.
func (p *Poller) Wait(evs []Event, timeout time.Duration) (int, error) {
	return 0, ErrUnsupported
}

// Close is a no-op.
func (p *Poller) Close() error { return nil }
