package procwait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntil_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     Config
		wantErr error
	}{
		"zero interval": {
			cfg:     Config{Timeout: time.Second},
			wantErr: ErrIntervalNotPositive,
		},
		"zero timeout": {
			cfg:     Config{Interval: time.Millisecond},
			wantErr: ErrTimeoutNotPositive,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Until(context.Background(), tc.cfg, func(context.Context, int) (bool, error) {
				return true, nil
			})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUntil_SucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	cfg := Config{Interval: time.Millisecond, Timeout: time.Second, Name: "probe"}
	calls := 0
	err := Until(context.Background(), cfg, func(_ context.Context, attempt int) (bool, error) {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		return attempt >= 3, nil
	})
	if err != nil {
		t.Fatalf("Until: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestUntil_CheckErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cfg := Config{Interval: time.Millisecond, Timeout: time.Second}
	err := Until(context.Background(), cfg, func(context.Context, int) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestUntil_TimesOut(t *testing.T) {
	t.Parallel()

	cfg := Config{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	err := Until(context.Background(), cfg, func(context.Context, int) (bool, error) {
		return false, nil
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestUntil_AbortedChannel(t *testing.T) {
	t.Parallel()

	aborted := make(chan struct{})
	close(aborted)
	cfg := Config{Interval: time.Millisecond, Timeout: time.Second, Aborted: aborted}
	err := Until(context.Background(), cfg, func(context.Context, int) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}
