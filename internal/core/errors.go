package core

import "github.com/pipeworks/pipespawn/internal/sentinel"

// Sentinel errors for error inspection with errors.Is. All spawn failures are
// reported before any child process exists; once the duplication succeeds the
// spawn call cannot fail.
const (
	// ErrUnknownProtocol is returned by Spawn when the named protocol was
	// never registered. Checked before any pipe is created.
	ErrUnknownProtocol = sentinel.Error("unknown protocol")

	// ErrNoProtocols is returned by Spawn when no protocol name was given
	// and the context has no registered protocols to default to.
	ErrNoProtocols = sentinel.Error("no protocols registered")

	// ErrProtocolExists is returned by RegisterProtocol on a duplicate name.
	ErrProtocolExists = sentinel.Error("protocol already registered")

	// ErrResourceExhausted is returned when a slot's descriptor table has no
	// headroom for three more entries, before any pipe is created.
	ErrResourceExhausted = sentinel.Error("descriptor table exhausted")

	// ErrPipeCreationFailed is returned when one of the three pipes could
	// not be created. No pipe fd remains open afterwards.
	ErrPipeCreationFailed = sentinel.Error("pipe creation failed")

	// ErrNonBlockingSetupFailed is returned when a parent-retained pipe end
	// could not be put into non-blocking mode.
	ErrNonBlockingSetupFailed = sentinel.Error("non-blocking setup failed")

	// ErrRegistrationFailed is returned when a descriptor could not be
	// entered into the slot's poll table or its interest could not be armed.
	ErrRegistrationFailed = sentinel.Error("reactor registration failed")

	// ErrDuplicationFailed is returned when the process duplication itself
	// failed. Exec failure inside the child is NOT this error: it surfaces
	// only as the child exiting with the configured failure status.
	ErrDuplicationFailed = sentinel.Error("process duplication failed")

	// ErrSlotOutOfRange is returned when a slot index does not exist.
	ErrSlotOutOfRange = sentinel.Error("slot index out of range")

	// ErrEmptyArgv is returned by Spawn before any resource is acquired.
	ErrEmptyArgv = sentinel.Error("argv must not be empty")
)
