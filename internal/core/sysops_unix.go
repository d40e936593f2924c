//go:build unix

package core

import "golang.org/x/sys/unix"

// signalTiers is the escalation sequence walked by TerminateAndReap: a
// graceful group signal first, then the same signal at the bare pid (group
// membership is not always retained), then harder signals. The sequence is
// fixed; escalation never loops.
// defaultParentDeathSignal is delivered to children when the spawning
// process dies, unless the caller configures another.
const defaultParentDeathSignal = int(unix.SIGTERM)

var signalTiers = []signalTier{
	{group: true, sig: int(unix.SIGTERM), name: "SIGTERM:group"},
	{group: false, sig: int(unix.SIGTERM), name: "SIGTERM"},
	{group: false, sig: int(unix.SIGPIPE), name: "SIGPIPE"},
	{group: false, sig: int(unix.SIGKILL), name: "SIGKILL"},
}

func sysPipe(p *[2]int) error {
	return unix.Pipe(p[:])
}

func sysSetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// sysCloseOnExec hides a retained fd from any future fork performed by this
// process, so later children cannot hold the pipe open.
func sysCloseOnExec(fd int) {
	unix.CloseOnExec(fd)
}

func sysClose(fd int) error {
	return unix.Close(fd)
}

// sysKill sends sig to target (a pid, or a negated pid for its group).
func sysKill(target, sig int) error {
	return unix.Kill(target, unix.Signal(sig))
}

// exitCode flattens a wait status into one int: the plain exit status for a
// normal exit, 128+signal for a signal-killed child (the shell convention,
// so SIGKILL reports as 137 instead of the -1 ExitStatus would yield).
func exitCode(ws unix.WaitStatus) int {
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}

// sysWaitNoHang performs one non-blocking wait against target (pid or
// negated pid). It never blocks: WNOHANG reports a live child as waitLive.
func sysWaitNoHang(target int) (waitResult, int) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(target, &ws, unix.WNOHANG, nil)
	switch {
	case pid > 0:
		return waitReaped, exitCode(ws)
	case err == unix.ECHILD:
		return waitGone, 0
	case err != nil:
		// EINVAL and friends: treat like "nothing to reap" so callers
		// never spin on a persistent error.
		return waitGone, 0
	default:
		return waitLive, 0
	}
}
