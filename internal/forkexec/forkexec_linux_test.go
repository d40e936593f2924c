//go:build linux

package forkexec

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// devNull opens /dev/null for reading and registers cleanup.
func devNull(t *testing.T) int {
	t.Helper()

	fd, err := unix.Open(os.DevNull, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

// runCollect starts cmd with stdout captured through a pipe, waits for the
// child, and returns its stdout and wait status.
func runCollect(t *testing.T, cmd *Command) (string, unix.WaitStatus) {
	t.Helper()

	// Close-on-exec keeps these pipe ends from leaking into children started
	// by concurrently running tests; the child of *this* command dups them
	// onto 0-2 before its exec, so the flag does not affect it.
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	null := devNull(t)
	cmd.Stdio = [3]int{null, p[1], p[1]}
	cmd.CloseFDs = []int{p[0], p[1]}

	pid, err := Start(cmd)
	if err != nil {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
		t.Fatalf("Start: %v", err)
	}
	// Close the write end so the read below observes EOF when the child exits.
	_ = unix.Close(p[1])

	var out strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := unix.Read(p[0], buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err != nil || n == 0 {
			break
		}
	}
	_ = unix.Close(p[0])

	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		t.Fatalf("wait4: %v", err)
	}
	return out.String(), ws
}

func TestStart_RunsAndCapturesStdout(t *testing.T) {
	t.Parallel()

	out, ws := runCollect(t, &Command{
		Argv: []string{"/bin/sh", "-c", "echo hi"},
		Env:  []string{"PATH=/usr/bin:/bin"},
	})
	if out != "hi\n" {
		t.Errorf("stdout = %q, want %q", out, "hi\n")
	}
	if !ws.Exited() || ws.ExitStatus() != 0 {
		t.Errorf("wait status = %v, want clean exit", ws)
	}
}

func TestStart_SearchPathResolution(t *testing.T) {
	t.Parallel()

	out, ws := runCollect(t, &Command{
		Argv: []string{"sh", "-c", "echo found"},
		Env:  []string{"PATH=/nonexistent:/usr/bin:/bin"},
	})
	if out != "found\n" {
		t.Errorf("stdout = %q, want %q", out, "found\n")
	}
	if !ws.Exited() || ws.ExitStatus() != 0 {
		t.Errorf("wait status = %v, want clean exit", ws)
	}
}

func TestStart_EnvReachesChild(t *testing.T) {
	t.Parallel()

	out, _ := runCollect(t, &Command{
		Argv: []string{"/bin/sh", "-c", "echo $PIPESPAWN_PROBE"},
		Env:  []string{"PATH=/usr/bin:/bin", "PIPESPAWN_PROBE=42"},
	})
	if out != "42\n" {
		t.Errorf("stdout = %q, want %q", out, "42\n")
	}
}

func TestStart_DirIsChildWorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	out, _ := runCollect(t, &Command{
		Argv: []string{"/bin/sh", "-c", "pwd -P"},
		Env:  []string{"PATH=/usr/bin:/bin"},
		Dir:  dir,
	})
	if strings.TrimSpace(out) != resolved {
		t.Errorf("child cwd = %q, want %q", strings.TrimSpace(out), resolved)
	}
}

func TestStart_MissingBinaryExitsWithFailStatus(t *testing.T) {
	t.Parallel()

	_, ws := runCollect(t, &Command{
		Argv: []string{"/nonexistent/binary"},
		Env:  []string{},
	})
	if !ws.Exited() || ws.ExitStatus() != DefaultFailStatus {
		t.Errorf("wait status = %v, want exit %d", ws, DefaultFailStatus)
	}
}

func TestStart_LiftedStdioDoesNotLeak(t *testing.T) {
	t.Parallel()

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}

	// A stdio source below fd 3 forces the child to lift it out of the way
	// before redirecting; the lifted copy must not survive the exec.
	pid, err := Start(&Command{
		Argv:     []string{"/bin/sh", "-c", "ls /proc/self/fd"},
		Env:      []string{"PATH=/usr/bin:/bin"},
		Stdio:    [3]int{0, p[1], p[1]},
		CloseFDs: []int{p[0], p[1]},
	})
	if err != nil {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
		t.Fatalf("Start: %v", err)
	}
	_ = unix.Close(p[1])

	var out strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := unix.Read(p[0], buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err != nil || n == 0 {
			break
		}
	}
	_ = unix.Close(p[0])

	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		t.Fatalf("wait4: %v", err)
	}

	// The listing process owns 0-2 plus the fd it holds on the directory
	// itself; anything above that is an inherited leak.
	for _, field := range strings.Fields(out.String()) {
		fd, err := strconv.Atoi(field)
		if err != nil {
			t.Fatalf("unexpected fd listing entry %q", field)
		}
		if fd > 3 {
			t.Errorf("fd %d leaked into the child", fd)
		}
	}
}

func TestStart_SetpgidDetachesGroup(t *testing.T) {
	t.Parallel()

	null := devNull(t)
	pid, err := Start(&Command{
		Argv:    []string{"/bin/sleep", "5"},
		Env:     []string{},
		Stdio:   [3]int{null, null, null},
		Setpgid: true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		_ = unix.Kill(pid, unix.SIGKILL)
		var ws unix.WaitStatus
		_, _ = unix.Wait4(pid, &ws, 0, nil)
	}()

	// setpgid runs in the child between clone and exec; allow it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		pgid, err := unix.Getpgid(pid)
		if err == nil && pgid == pid {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("child pgid = %d (err %v), want %d", pgid, err, pid)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStart_Validation(t *testing.T) {
	t.Parallel()

	t.Run("empty argv", func(t *testing.T) {
		t.Parallel()

		_, err := Start(&Command{})
		if !errors.Is(err, ErrNoArgv) {
			t.Errorf("err = %v, want ErrNoArgv", err)
		}
	})

	t.Run("invalid stdio fd", func(t *testing.T) {
		t.Parallel()

		_, err := Start(&Command{Argv: []string{"/bin/true"}, Stdio: [3]int{-1, -1, -1}})
		if !errors.Is(err, ErrBadStdio) {
			t.Errorf("err = %v, want ErrBadStdio", err)
		}
	})
}
