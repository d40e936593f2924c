// Package forkexec duplicates the calling process and replaces the child's
// program image, with the child's fds 0/1/2 redirected onto caller-supplied
// pipe ends.
//
// The stdlib exec machinery reports exec failure back to the parent through a
// status pipe, which makes "the binary does not exist" a synchronous Start
// error. This package keeps the classic fork/exec split instead: Start returns
// as soon as the duplication succeeds, and an exec failure is observable only
// as the child exiting with a fixed status (Command.FailStatus). That split is
// what a reactor needs: the parent's bookkeeping is identical whether the
// child execs or dies, and the failure surfaces later through reaping.
//
// The child of a multithreaded Go process must not run Go code between clone
// and execve: no allocation, no scheduler interaction, no locks. Everything
// the child needs is precomputed in the parent into flat pointer arrays, and
// the child body is a single no-race function issuing raw syscalls only.
// Mutating kernel-visible state (fd table, process group, signal disposition,
// working directory) is safe there; nothing else is.
//
// Linux only. Other platforms compile and return ErrUnsupported from Start.
package forkexec
