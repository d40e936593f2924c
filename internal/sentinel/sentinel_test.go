package sentinel

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  Error
		want string
	}{
		"simple message": {err: Error("pipe creation failed"), want: "pipe creation failed"},
		"empty message":  {err: Error(""), want: ""},
		"with space":     {err: Error("unknown protocol"), want: "unknown protocol"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestError_ErrorsIs(t *testing.T) {
	t.Parallel()

	const sent = Error("resource exhausted")

	t.Run("direct match", func(t *testing.T) {
		t.Parallel()

		if !errors.Is(sent, sent) {
			t.Error("errors.Is should match identical sentinel errors")
		}
	})

	t.Run("wrapped match", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("spawn: %w", sent)
		if !errors.Is(wrapped, sent) {
			t.Error("errors.Is should match sentinel error through wrapping")
		}
	})

	t.Run("different sentinel no match", func(t *testing.T) {
		t.Parallel()

		const other = Error("other error")
		if errors.Is(sent, other) {
			t.Error("errors.Is should not match different sentinel errors")
		}
	})

	t.Run("same text different type no match", func(t *testing.T) {
		t.Parallel()

		stdErr := errors.New("resource exhausted")
		if errors.Is(sent, stdErr) {
			t.Error("errors.Is should not match sentinel error against errors.New with same text")
		}
	})
}

func TestError_CanDeclareAsConst(t *testing.T) {
	t.Parallel()

	// Compiles only if Error is usable in a const declaration.
	const errConst = Error("constant error")
	if errConst.Error() != "constant error" {
		t.Error("const Error should return its string value")
	}
}
