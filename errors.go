package pipespawn

import (
	"github.com/pipeworks/pipespawn/internal/core"
	"github.com/pipeworks/pipespawn/internal/poller"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain
// comparison. Every spawn failure is reported before any child process
// exists; once the duplication succeeds, Spawn cannot fail.
const (
	// ErrUnknownProtocol is returned by Spawn when the named protocol was
	// never registered. Checked before any pipe is created.
	ErrUnknownProtocol = core.ErrUnknownProtocol

	// ErrNoProtocols is returned by Spawn when no protocol name was given
	// and no protocol has been registered to default to.
	ErrNoProtocols = core.ErrNoProtocols

	// ErrProtocolExists is returned by RegisterProtocol on a duplicate name.
	ErrProtocolExists = core.ErrProtocolExists

	// ErrResourceExhausted is returned by Spawn when the slot's descriptor
	// table has no headroom for three more entries, before any pipe is
	// created.
	ErrResourceExhausted = core.ErrResourceExhausted

	// ErrPipeCreationFailed is returned when one of the three pipes could
	// not be created. No pipe fd remains open afterwards.
	ErrPipeCreationFailed = core.ErrPipeCreationFailed

	// ErrNonBlockingSetupFailed is returned when a parent-retained pipe end
	// could not be put into non-blocking mode.
	ErrNonBlockingSetupFailed = core.ErrNonBlockingSetupFailed

	// ErrRegistrationFailed is returned when a descriptor could not be
	// entered into the slot's poll table or its interest could not be
	// armed.
	ErrRegistrationFailed = core.ErrRegistrationFailed

	// ErrDuplicationFailed is returned when the process duplication itself
	// failed. A child that fails to exec is NOT this error: that surfaces
	// only as the child exiting with the configured failure status.
	ErrDuplicationFailed = core.ErrDuplicationFailed

	// ErrSlotOutOfRange is returned when a slot index does not exist.
	ErrSlotOutOfRange = core.ErrSlotOutOfRange

	// ErrEmptyArgv is returned by Spawn before any resource is acquired.
	ErrEmptyArgv = core.ErrEmptyArgv

	// ErrUnsupported is returned by New on platforms without a poll
	// backend.
	ErrUnsupported = poller.ErrUnsupported
)
