//go:build !linux

package forkexec

// Start reports the platform as unsupported.
func Start(cmd *Command) (int, error) {
	return 0, ErrUnsupported
}
