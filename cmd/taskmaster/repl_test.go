package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihya/taskmaster/internal/control"
	"github.com/aihya/taskmaster/internal/program"
	"github.com/aihya/taskmaster/internal/registry"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require /bin/sh on Unix-like systems")
	}
}

type fakeLoader struct {
	cfg map[string]program.Config
}

func (f *fakeLoader) Load() (map[string]program.Config, error) { return f.cfg, nil }

func newTestSurface(t *testing.T, cfg map[string]program.Config) *control.Surface {
	t.Helper()
	reg := registry.New(&fakeLoader{cfg: cfg}, nil)
	_, err := reg.Load()
	require.NoError(t, err)
	var lock sync.Mutex
	return control.New(&lock, reg, nil)
}

func silentDiag() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDispatchUnknownCommandWarns(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"p": {"cmd": "true"}})
	var out bytes.Buffer
	done := dispatch("bogus", nil, surface, silentDiag(), &out)
	assert.False(t, done, "unknown command must not terminate the REPL")
	assert.Contains(t, out.String(), "unknown command")
}

func TestDispatchStartThenStatusReportsRunning(t *testing.T) {
	requireUnix(t)
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "sleep 1"}})

	var out bytes.Buffer
	dispatch("start", []string{"web"}, surface, silentDiag(), &out)
	out.Reset()
	dispatch("status", []string{"web"}, surface, silentDiag(), &out)
	assert.Contains(t, out.String(), "web")
	assert.Contains(t, out.String(), "running=1")
}

func TestDispatchStatusReportsUnknownProgram(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "true"}})
	var out bytes.Buffer
	dispatch("status", []string{"nosuch"}, surface, silentDiag(), &out)
	assert.Contains(t, out.String(), "programs not found: nosuch")
}

func TestDispatchFullRestartRejectsArguments(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "true"}})
	var out bytes.Buffer
	done := dispatch("full_restart", []string{"web"}, surface, silentDiag(), &out)
	assert.False(t, done, "full_restart with arguments must not terminate the REPL")
	assert.Contains(t, out.String(), "takes no arguments")
}

func TestDispatchExitTerminatesREPL(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "true"}})
	var out bytes.Buffer
	assert.True(t, dispatch("exit", nil, surface, silentDiag(), &out), "exit must terminate the REPL")
}

func TestTokenizeSplitsOnWhitespace(t *testing.T) {
	cmd, args := tokenize("  start web  db ")
	assert.Equal(t, "start", cmd)
	assert.Equal(t, []string{"web", "db"}, args)
}

func TestTokenizeEmptyLine(t *testing.T) {
	cmd, args := tokenize("   ")
	assert.Equal(t, "", cmd)
	assert.Nil(t, args)
}

func TestRunREPLReturnsOnCancelledContext(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "true"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	var out bytes.Buffer
	go func() {
		runREPL(ctx, strings.NewReader(""), &out, surface, silentDiag())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("runREPL did not return after its context was cancelled")
	}
}

func TestRunREPLReturnsOnEndOfInput(t *testing.T) {
	surface := newTestSurface(t, map[string]program.Config{"web": {"cmd": "true"}})
	ctx := context.Background()

	done := make(chan struct{})
	var out bytes.Buffer
	go func() {
		runREPL(ctx, strings.NewReader("status\n"), &out, surface, silentDiag())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("runREPL did not return after end of input")
	}
	assert.Contains(t, out.String(), "web")
}
