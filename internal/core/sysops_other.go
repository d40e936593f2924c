//go:build !unix

package core

import "github.com/pipeworks/pipespawn/internal/poller"

// The spawn engine needs pipes, signals and non-blocking waits; none are
// available here. Spawn is already gated on poller and forkexec support, so
// these stubs exist only to keep the package compiling.

const defaultParentDeathSignal = 0

var signalTiers []signalTier

func sysPipe(p *[2]int) error { return poller.ErrUnsupported }

func sysSetNonblock(fd int) error { return poller.ErrUnsupported }

func sysCloseOnExec(fd int) {}

func sysClose(fd int) error { return nil }

func sysKill(target, sig int) error { return poller.ErrUnsupported }

func sysWaitNoHang(target int) (waitResult, int) { return waitGone, 0 }
