//go:build linux

package forkexec

// The runtime must be quiesced around a raw clone: beforeFork stops the
// world's ability to hold runtime locks across the duplication and masks
// signals; afterFork undoes that in the parent; afterForkInChild reinitializes
// the minimal runtime state the child needs to reach execve. These are the
// same hooks the stdlib exec machinery uses around its own fork.

import _ "unsafe" // for go:linkname

//go:linkname beforeFork syscall.runtime_BeforeFork
func beforeFork()

//go:linkname afterFork syscall.runtime_AfterFork
func afterFork()

//go:linkname afterForkInChild syscall.runtime_AfterForkInChild
func afterForkInChild()
