//go:build linux

package forkexec

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// childState is everything the child needs after clone, precomputed into
// flat pointer arrays. The child reads and mutates only this struct and the
// memory it points to; since the duplication is a fully independent fork
// (copy-on-write, parent keeps running), child-side writes are private.
type childState struct {
	candidates []*byte // NUL-terminated executable paths, tried in order
	argv       []*byte // NULL-terminated argument vector
	envp       []*byte // NULL-terminated environment
	dir        *byte   // optional chdir target
	stdio      [3]int
	closefds   []int
	setpgid    bool
	pdeathsig  uintptr
	failStatus uintptr
}

// prepare converts cmd into a childState. All allocation happens here, in the
// parent, before the fork.
func prepare(cmd *Command) (*childState, error) {
	cs := &childState{
		stdio:      cmd.Stdio,
		closefds:   cmd.CloseFDs,
		setpgid:    cmd.Setpgid,
		pdeathsig:  uintptr(cmd.Pdeathsig),
		failStatus: uintptr(cmd.FailStatus),
	}
	if cs.failStatus == 0 {
		cs.failStatus = DefaultFailStatus
	}

	candidates := pathCandidates(cmd.Argv[0], searchPath(cmd.Env))
	cs.candidates = make([]*byte, 0, len(candidates))
	for _, c := range candidates {
		p, err := syscall.BytePtrFromString(c)
		if err != nil {
			return nil, fmt.Errorf("executable path %q: %w", c, err)
		}
		cs.candidates = append(cs.candidates, p)
	}

	var err error
	if cs.argv, err = syscall.SlicePtrFromStrings(cmd.Argv); err != nil {
		return nil, fmt.Errorf("argv: %w", err)
	}
	if cs.envp, err = syscall.SlicePtrFromStrings(cmd.Env); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	if cmd.Dir != "" {
		if cs.dir, err = syscall.BytePtrFromString(cmd.Dir); err != nil {
			return nil, fmt.Errorf("dir: %w", err)
		}
	}
	return cs, nil
}

// Start duplicates the process and launches cmd in the child. It returns the
// child pid as soon as the duplication succeeds; whether the exec itself
// succeeds is observable only through the child's exit status.
func Start(cmd *Command) (int, error) {
	if len(cmd.Argv) == 0 {
		return 0, ErrNoArgv
	}
	for _, fd := range cmd.Stdio {
		if fd < 0 {
			return 0, ErrBadStdio
		}
	}

	cs, err := prepare(cmd)
	if err != nil {
		return 0, err
	}

	// ForkLock serializes against stdlib fork/exec paths so fds opened by
	// other goroutines are not caught mid-way between open and CLOEXEC.
	syscall.ForkLock.Lock()
	pid, errno := forkAndExec(cs)
	syscall.ForkLock.Unlock()

	runtime.KeepAlive(cs)
	if errno != 0 {
		return 0, fmt.Errorf("clone: %w", errno)
	}
	return int(pid), nil
}

// forkAndExec performs the duplication and, in the child, the redirection and
// program replacement. From clone to execve the child executes raw syscalls
// only: the heap it shares structurally with the parent is already a private
// copy, but Go code is still off-limits because only the forking thread
// exists in the child.
//
//go:norace
func forkAndExec(cs *childState) (pid uintptr, err syscall.Errno) {
	beforeFork()

	r1, _, err1 := syscall.RawSyscall6(unix.SYS_CLONE, uintptr(unix.SIGCHLD), 0, 0, 0, 0, 0)
	if err1 != 0 || r1 != 0 {
		// Parent branch, or the clone itself failed.
		afterFork()
		return r1, err1
	}

	// Child. Only kernel-state mutations and raw syscalls below.
	afterForkInChild()

	if cs.setpgid {
		_, _, _ = syscall.RawSyscall(unix.SYS_SETPGID, 0, 0, 0)
	}
	if cs.pdeathsig != 0 {
		_, _, _ = syscall.RawSyscall6(unix.SYS_PRCTL, unix.PR_SET_PDEATHSIG, cs.pdeathsig, 0, 0, 0, 0)
	}

	// Lift any redirection source out of the 0-2 range first, so the dup
	// loop below cannot clobber a source it has not consumed yet. The
	// lifted copy is close-on-exec: DUP3 consumes it before execve and
	// nothing may survive into the child image.
	for i := 0; i < 3; i++ {
		if cs.stdio[i] < 3 {
			r, _, e := syscall.RawSyscall(unix.SYS_FCNTL, uintptr(cs.stdio[i]), unix.F_DUPFD_CLOEXEC, 3)
			if e != 0 {
				childExit(cs.failStatus)
			}
			cs.stdio[i] = int(r)
		}
	}
	for i := 0; i < 3; i++ {
		_, _, e := syscall.RawSyscall(unix.SYS_DUP3, uintptr(cs.stdio[i]), uintptr(i), 0)
		if e != 0 {
			childExit(cs.failStatus)
		}
	}
	for _, fd := range cs.closefds {
		if fd >= 3 {
			_, _, _ = syscall.RawSyscall(unix.SYS_CLOSE, uintptr(fd), 0, 0)
		}
	}

	// Best-effort: a missing scratch directory must not sink the launch.
	if cs.dir != nil {
		_, _, _ = syscall.RawSyscall(unix.SYS_CHDIR, uintptr(unsafe.Pointer(cs.dir)), 0, 0)
	}

	for _, cand := range cs.candidates {
		_, _, _ = syscall.RawSyscall(unix.SYS_EXECVE,
			uintptr(unsafe.Pointer(cand)),
			uintptr(unsafe.Pointer(&cs.argv[0])),
			uintptr(unsafe.Pointer(&cs.envp[0])))
	}

	// Every execve returned control: the launch failed.
	childExit(cs.failStatus)
	return 0, 0 // unreachable
}

// childExit terminates the child process with the given status. It never
// returns; the loop satisfies the compiler on the impossible fallthrough.
//
//go:norace
func childExit(status uintptr) {
	for {
		_, _, _ = syscall.RawSyscall(unix.SYS_EXIT_GROUP, status, 0, 0)
	}
}
