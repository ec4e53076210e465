package child

import (
	"runtime"
	"testing"
	"time"

	"github.com/aihya/taskmaster/internal/enum"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require /bin/sh on Unix-like systems")
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s", timeout)
	}
}

func TestSpawnMarksRunningThenExits(t *testing.T) {
	requireUnix(t)
	c := New("p1", "sleep 0.05", nil)
	c.Spawn()
	if !c.IsRunning() {
		t.Fatalf("expected running right after spawn")
	}
	if c.PID() <= 0 {
		t.Fatalf("expected a positive pid, got %d", c.PID())
	}

	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })

	code, done := c.ExitStatus()
	if !done || code != 0 {
		t.Fatalf("expected clean exit, got code=%d done=%v", code, done)
	}
}

func TestSpawnFailureDoesNotPanicAndLeavesNotRunning(t *testing.T) {
	requireUnix(t)
	c := New("bad", "", nil)
	c.attrs.WorkDir = "/this/path/does/not/exist/at/all"
	c.Spawn()
	if c.IsRunning() {
		t.Fatalf("expected spawn failure to leave the child not running")
	}
}

func TestLivedEnoughStrictInequality(t *testing.T) {
	requireUnix(t)
	c := New("short", "sleep 0.02", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })
	// Check records the end timestamp of the exit it observes; NEVER keeps it
	// from respawning the child.
	c.Check(enum.Never, 0, map[int]bool{0: true}, 0, 0)

	if c.LivedEnough(time.Hour) {
		t.Fatalf("a short-lived process should not count as having lived an hour")
	}
	if !c.LivedEnough(0) {
		t.Fatalf("a zero start-time requirement should always be satisfied")
	}

	start := time.Now()
	end := start.Add(time.Second)
	c.mu.Lock()
	c.startTS, c.endTS = &start, &end
	c.mu.Unlock()
	if c.LivedEnough(time.Second) {
		t.Fatalf("living exactly start_time must not count as having lived enough")
	}
}

func TestKillSetsKilledByUserAndStopsProcess(t *testing.T) {
	requireUnix(t)
	c := New("longrun", "sleep 5", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return c.IsRunning() })

	c.Kill(enum.TERM, true)

	if !c.KilledByUser() {
		t.Fatalf("expected killed-by-user flag to be set")
	}
	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })
}

func TestRestartResetsRetriesAndRespawns(t *testing.T) {
	requireUnix(t)
	c := New("r", "sleep 5", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return c.IsRunning() })
	oldPID := c.PID()

	c.mu.Lock()
	c.retries = 3
	c.mu.Unlock()

	c.Restart()
	waitUntil(t, time.Second, func() bool { return c.IsRunning() })

	if c.Retries() != 0 {
		t.Fatalf("expected retries reset to 0, got %d", c.Retries())
	}
	if c.PID() == oldPID {
		t.Fatalf("expected a new process after restart")
	}
	c.Kill(enum.KILL, true)
}

func TestCheckAlwaysRestartsOnCleanExitWithoutConsumingRetry(t *testing.T) {
	requireUnix(t)
	c := New("always", "true", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })

	c.Check(enum.Always, 0, map[int]bool{0: true}, 0, 3)

	waitUntil(t, time.Second, func() bool { return c.IsRunning() })
	if c.Retries() != 0 {
		t.Fatalf("an ALWAYS-policy clean exit must not consume a retry, got %d", c.Retries())
	}
	c.Kill(enum.KILL, true)
}

func TestCheckUnexpectedDoesNotRestartOnExpectedCleanExit(t *testing.T) {
	requireUnix(t)
	c := New("unexpected", "true", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })

	c.Check(enum.Unexpected, 0, map[int]bool{0: true}, 0, 3)

	time.Sleep(50 * time.Millisecond)
	if c.IsRunning() {
		t.Fatalf("an expected clean exit under UNEXPECTED policy should not trigger a restart")
	}
}

func TestCheckRetryLimitStopsRestarting(t *testing.T) {
	requireUnix(t)
	c := New("fail", "false", nil)
	c.Spawn()
	waitUntil(t, time.Second, func() bool { return !c.IsRunning() })

	// retriesLimit=0: the first failing exit already exceeds the limit once incremented.
	c.Check(enum.Always, 0, map[int]bool{0: true}, 0, 0)
	time.Sleep(50 * time.Millisecond)
	if c.IsRunning() {
		t.Fatalf("expected no restart once the retry limit is exceeded")
	}
	if c.Retries() != 1 {
		t.Fatalf("expected retries to have been incremented once, got %d", c.Retries())
	}
}
