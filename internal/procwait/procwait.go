// Package procwait provides bounded polling for child-process conditions,
// such as "the child has exited" or "the child has written its banner".
//
// It wraps the apimachinery polling helper so every caller gets the same
// timeout, abort and logging behavior instead of hand-rolling ticker loops.
package procwait

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/pipeworks/pipespawn/internal/sentinel"
)

// ErrIntervalNotPositive indicates a non-positive poll interval.
const ErrIntervalNotPositive = sentinel.Error("interval must be positive")

// ErrTimeoutNotPositive indicates a non-positive timeout.
const ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")

// ErrAborted indicates the Aborted channel closed before the condition held.
const ErrAborted = sentinel.Error("aborted before condition held")

// Check is one poll attempt. The context is canceled when the polling loop
// times out or the caller cancels. attempt is 1-based. Returning done stops
// the loop successfully; returning an error aborts it.
type Check func(ctx context.Context, attempt int) (done bool, err error)

// Config configures Until.
type Config struct {
	Interval time.Duration   // poll interval
	Timeout  time.Duration   // overall bound
	Name     string          // subject for log and error messages
	Logger   *slog.Logger    // optional; defaults to slog.Default()
	Aborted  <-chan struct{} // optional; closing it fails the wait immediately
}

// Until polls check at cfg.Interval until it reports done, fails, the
// timeout elapses, or cfg.Aborted closes.
func Until(ctx context.Context, cfg Config, check Check) error {
	if cfg.Name == "" {
		cfg.Name = "condition"
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// attempt needs no synchronization: the poll helper invokes the
	// condition sequentially, never concurrently with itself.
	attempt := 0
	err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			if cfg.Aborted != nil {
				select {
				case <-cfg.Aborted:
					return false, fmt.Errorf("%s: %w", cfg.Name, ErrAborted)
				default:
				}
			}

			attempt++
			done, err := check(pollCtx, attempt)
			if err != nil {
				return false, err
			}
			if done {
				log.Debug("wait succeeded", "name", cfg.Name, "attempt", attempt)
			}
			return done, nil
		})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", cfg.Name, err)
	}
	return nil
}
