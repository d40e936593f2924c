//go:build linux

package poller

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Poller is an epoll instance. It is not safe for concurrent use; the owning
// thread-slot goroutine must serialize all calls, matching the single-thread
// ownership model of the descriptor table built on top of it.
type Poller struct {
	epfd int
}

// Open creates a new epoll instance with close-on-exec set, so spawned
// children never inherit the poller fd.
func Open() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Poller{epfd: epfd}, nil
}

// events translates an Interest set into epoll event bits.
// Level-triggered on purpose: dispatch code may consume a readiness
// condition only partially and must be re-notified on the next wait.
func events(in Interest) uint32 {
	var ev uint32
	if in&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if in&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// Add inserts fd into the table armed with the given interest.
func (p *Poller) Add(fd int, in Interest) error {
	ev := unix.EpollEvent{Events: events(in), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}
	return nil
}

// Modify replaces the interest set of an fd already in the table.
func (p *Poller) Modify(fd int, in Interest) error {
	ev := unix.EpollEvent{Events: events(in), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl mod fd %d: %w", fd, err)
	}
	return nil
}

// Remove takes fd out of the table. Removing an fd that was already closed
// returns an error (EBADF); callers remove before closing.
func (p *Poller) Remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll_ctl del fd %d: %w", fd, err)
	}
	return nil
}

// Wait performs one poll step, filling evs with ready descriptors.
// A negative timeout blocks indefinitely; zero polls without blocking.
// EINTR is retried internally so callers never observe it.
func (p *Poller) Wait(evs []Event, timeout time.Duration) (int, error) {
	raw := make([]unix.EpollEvent, len(evs))

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	var n int
	for {
		var err error
		n, err = unix.EpollWait(p.epfd, raw, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("epoll_wait: %w", err)
		}
		break
	}

	for i := 0; i < n; i++ {
		var ready Interest
		if raw[i].Events&unix.EPOLLIN != 0 {
			ready |= Readable
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			ready |= Writable
		}
		evs[i] = Event{
			FD:      int(raw[i].Fd),
			Ready:   ready,
			HangUp:  raw[i].Events&unix.EPOLLHUP != 0,
			IsError: raw[i].Events&unix.EPOLLERR != 0,
		}
	}
	return n, nil
}

// Close releases the epoll instance. Descriptors still in the table are
// detached implicitly by the kernel; their fds are not closed.
func (p *Poller) Close() error {
	if p.epfd < 0 {
		return nil
	}
	err := unix.Close(p.epfd)
	p.epfd = -1
	return err
}
