package forkexec

import (
	"os"
	"strings"

	"github.com/pipeworks/pipespawn/internal/sentinel"
)

// ErrUnsupported is returned by Start on platforms without a fork/exec
// implementation.
const ErrUnsupported = sentinel.Error("fork/exec not supported on this platform")

// ErrNoArgv is returned by Start when Command.Argv is empty.
const ErrNoArgv = sentinel.Error("argv must not be empty")

// ErrBadStdio is returned by Start when a Command.Stdio fd is negative.
const ErrBadStdio = sentinel.Error("stdio fds must all be valid")

// DefaultFailStatus is the exit status of a child whose execve never
// succeeded. 127 is the conventional "command not found" status and is
// distinguishable from ordinary child exit codes.
const DefaultFailStatus = 127

// fallbackPath is the search path used when neither the command environment
// nor the parent environment defines PATH.
const fallbackPath = "/usr/local/bin:/usr/bin:/bin"

// Command describes one child to launch.
type Command struct {
	// Argv is the argument vector. Argv[0] names the executable; when it
	// contains no slash it is resolved against the search path.
	Argv []string

	// Env is the child environment as KEY=VALUE strings, passed directly to
	// execve. An empty slice gives the child an empty environment.
	Env []string

	// Dir is the working directory the child changes into before exec.
	// Best-effort: a failing chdir does not abort the launch.
	Dir string

	// Stdio holds the fds the child dups onto 0, 1 and 2, in that order.
	Stdio [3]int

	// CloseFDs are additional fds the child closes after redirection,
	// typically the remaining pipe ends inherited across the fork. Entries
	// below 3 are skipped; the redirected stdio must survive.
	CloseFDs []int

	// Setpgid detaches the child into its own process group, so terminal
	// interrupt signals aimed at the parent's group do not reach it.
	Setpgid bool

	// Pdeathsig, when nonzero on Linux, asks the kernel to deliver this
	// signal to the child if the parent thread dies first. Best-effort.
	Pdeathsig int

	// FailStatus is the exit status used when execve returns control.
	// Zero selects DefaultFailStatus.
	FailStatus int
}

// searchPath returns the PATH value governing executable resolution: the
// command's own environment wins, then the parent's, then a fixed fallback.
func searchPath(env []string) string {
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			return v
		}
	}
	if v := os.Getenv("PATH"); v != "" {
		return v
	}
	return fallbackPath
}

// pathCandidates expands name into the list of paths the child will try to
// execve, in order. A name containing a slash is used as-is. The expansion
// happens in the parent so the child performs no string work; the child
// simply walks the list until one execve sticks, which reproduces execvp
// semantics (including "try the next dir on ENOENT/EACCES") without any
// parent-side stat racing against the exec.
func pathCandidates(name, path string) []string {
	if strings.Contains(name, "/") {
		return []string{name}
	}
	dirs := strings.Split(path, ":")
	candidates := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			// POSIX: an empty PATH element means the current directory.
			dir = "."
		}
		candidates = append(candidates, dir+"/"+name)
	}
	return candidates
}
