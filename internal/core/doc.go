// Package core implements the piped spawn engine behind the public pipespawn
// package: thread-slot descriptor tables, the pipe triplet and its reactor
// registration, process launch and unwind, deadline scheduling, and the
// terminate/reap state machine.
//
// Concurrency model: a Context owns one or more Slots. Everything that
// touches a slot's descriptor table, poll table, deadlines or handles must
// run on the single goroutine that services that slot. No locking is done on
// these structures; correctness depends entirely on slot affinity. The only
// deliberate exception is Context.Close, which may only be called after all
// slot goroutines have stopped servicing.
package core
