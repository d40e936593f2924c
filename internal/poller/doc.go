// Package poller wraps the platform readiness-notification facility behind a
// small table-oriented API: add a file descriptor with an interest set, modify
// the interest, remove the descriptor, and perform one bounded wait.
//
// On Linux the implementation is epoll in level-triggered mode. Other
// platforms compile but return ErrUnsupported from Open; callers are expected
// to gate spawn functionality on poller availability.
//
// The package deliberately does not run a loop. Each Wait call is a single
// poll step; loop ownership stays with the caller so that all dispatch happens
// on the thread-slot goroutine that owns the table.
package poller
