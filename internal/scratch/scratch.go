// Package scratch manages the directory spawned children use as their
// working directory.
//
// The directory is guarded by an advisory file lock so that two reactor
// instances (in the same process or across processes) cannot claim the same
// scratch tree and interfere with each other's child working files.
package scratch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between consecutive attempts to acquire
// the scratch lock. 50ms keeps the wait short after a holder releases without
// busy-polling.
const lockRetryInterval = 50 * time.Millisecond

// lockFileName is the advisory lock file kept inside the scratch directory.
// It is intentionally never removed: unlinking a lock file races against a
// concurrent acquirer holding the same inode.
const lockFileName = ".pipespawn.lock"

// Dir is an acquired scratch directory. The zero value is not usable;
// obtain one via Acquire.
type Dir struct {
	path string
	fl   *flock.Flock
	log  *slog.Logger
}

// Acquire creates base if needed and takes the exclusive scratch lock on it,
// retrying until the lock is held or ctx is done. If logger is nil,
// slog.Default() is used.
func Acquire(ctx context.Context, base string, logger *slog.Logger) (*Dir, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", base, err)
	}

	fl := flock.New(filepath.Join(base, lockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("lock scratch dir %s: %w", base, err)
	}
	if !locked {
		// TryLockContext reports failure through err; guard the odd
		// (false, nil) combination anyway.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock scratch dir %s: %w", base, ctx.Err())
		}
		return nil, fmt.Errorf("lock scratch dir %s: lock not acquired", base)
	}

	return &Dir{path: base, fl: fl, log: logger}, nil
}

// Path returns the scratch directory path children chdir into.
func (d *Dir) Path() string {
	return d.path
}

// Release drops the scratch lock. Best-effort: errors are logged, not
// returned, since release runs on teardown paths that cannot recover anyway.
// Safe to call on a nil Dir.
func (d *Dir) Release() {
	if d == nil || d.fl == nil {
		return
	}
	if err := d.fl.Close(); err != nil {
		d.log.Debug("failed to release scratch lock", "path", d.path, "err", err)
	}
	d.fl = nil
}
