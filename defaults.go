package pipespawn

// Default configuration values for New. Exported so callers can build
// custom configurations relative to them.
const (
	// DefaultSlotCount is the number of thread-slots a reactor starts
	// with. Each slot has its own poll table and is serviced by exactly
	// one goroutine.
	DefaultSlotCount = 1

	// DefaultDescriptorLimit caps the descriptors registered per slot.
	// One position is kept in reserve, so the effective ceiling is
	// DefaultDescriptorLimit-1.
	DefaultDescriptorLimit = 256

	// DefaultEventBuffer is the per-slot capacity of the readiness batch
	// collected by one Service call.
	DefaultEventBuffer = 64

	// DefaultExecFailStatus is the exit status of a child whose exec never
	// happened, mirroring the shell convention for "command not found".
	DefaultExecFailStatus = 127
)
