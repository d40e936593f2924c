// Package pipespawn manages piped child processes on a non-blocking I/O
// reactor.
//
// Each spawn creates three pipes wiring the child's stdin, stdout and stderr
// to the parent, registers the parent-retained pipe ends as non-blocking
// descriptors on a reactor slot, and launches the child. Readiness on any of
// the three descriptors is dispatched to a named protocol's handlers from
// the slot's single servicing goroutine; no spawn structure is ever touched
// from two goroutines.
//
// # Basic Usage
//
//	import "github.com/pipeworks/pipespawn"
//
//	ctx := context.Background()
//
//	r, err := pipespawn.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	err = r.RegisterProtocol(&pipespawn.Protocol{
//	    Name: "collect",
//	    OnReadable: func(d *pipespawn.Descriptor) {
//	        // drain d.FD() with non-blocking reads
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var h pipespawn.Handle
//	err = r.Spawn(pipespawn.SpawnConfig{
//	    Argv:     []string{"cat", "/etc/hostname"},
//	    Protocol: "collect",
//	}, &h)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, _ := r.Slot(0)
//	for !h.PollExit() {
//	    if _, err := s.Service(100 * time.Millisecond); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	r.Destroy(&h)
//
// # Launch Atomicity
//
// Spawn either takes full effect or none: any failure before the process
// duplication releases every pipe and descriptor acquired so far, in reverse
// order, and leaves the reactor's accounting unchanged. Once the duplication
// succeeds Spawn returns nil; a child that fails to exec is indistinguishable
// from one that exited with the configured failure status (127 by default),
// observable through reaping.
//
// # Termination
//
// TerminateAndReap escalates SIGTERM (process group first when the spawn
// used GroupKill), SIGTERM at the bare pid, SIGPIPE, then SIGKILL, probing
// for the exit after each with non-blocking waits. It never closes the pipe
// descriptors, so buffered output from a killed child can still be drained
// before Destroy.
//
// # Platform Support
//
// Spawning requires Linux (the reactor backend is epoll). On other
// platforms construction fails with ErrUnsupported.
package pipespawn
