// Package control implements the typed command entry points the external
// front-end invokes: start, stop, restart, status, full_status,
// full_restart, reload, exit, log. Every handler acquires the shared lock,
// does its work, and releases it before returning.
package control

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aihya/taskmaster/internal/registry"
)

// LogStreamer exposes the log sink's Stream operation for the `log`
// command.
type LogStreamer interface {
	Stream(w io.Writer) error
}

// Surface is the control surface: one lock shared with the Monitor, the
// Registry it delegates to, and the log sink the `log` command streams.
type Surface struct {
	lock *sync.Mutex
	reg  *registry.Registry
	log  LogStreamer
}

// New builds a Surface sharing lock with the Monitor.
func New(lock *sync.Mutex, reg *registry.Registry, log LogStreamer) *Surface {
	return &Surface{lock: lock, reg: reg, log: log}
}

func unknownMessage(names []string) string {
	return fmt.Sprintf("programs not found: %s", strings.Join(names, ", "))
}

// Start executes every named Program.
func (s *Surface) Start(names []string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	found, unknown := s.reg.Resolve(names)
	for _, p := range found {
		p.Execute()
	}
	return reportUnknown(unknown)
}

// Stop kills every named Program.
func (s *Surface) Stop(names []string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	found, unknown := s.reg.Resolve(names)
	for _, p := range found {
		p.Kill()
	}
	return reportUnknown(unknown)
}

// Restart restarts every named Program. An empty argument list is a no-op.
func (s *Surface) Restart(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	found, unknown := s.reg.Resolve(names)
	for _, p := range found {
		p.Restart()
	}
	return reportUnknown(unknown)
}

// Status reports per-name status if names are given, else the full
// Registry status.
func (s *Surface) Status(names []string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(names) == 0 {
		return s.reg.Status()
	}
	found, unknown := s.reg.Resolve(names)
	var out []string
	for _, p := range found {
		out = append(out, p.Status())
	}
	return append(out, reportUnknown(unknown)...)
}

// FullStatus is Status's full_status counterpart.
func (s *Surface) FullStatus(names []string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(names) == 0 {
		return s.reg.FullStatus()
	}
	found, unknown := s.reg.Resolve(names)
	var out []string
	for _, p := range found {
		out = append(out, p.FullStatus()...)
	}
	return append(out, reportUnknown(unknown)...)
}

// FullRestart kills then executes every Program. Takes no arguments.
func (s *Surface) FullRestart() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, name := range s.reg.Names() {
		p, ok := s.reg.Get(name)
		if !ok {
			continue
		}
		p.Kill()
		p.Execute()
	}
}

// Reload re-invokes the configuration loader and reconciles the Registry.
func (s *Surface) Reload() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.reg.Reload()
}

// Exit kills every running Child across every Program before the caller
// terminates the process, so no supervised process outlives the
// supervisor.
func (s *Surface) Exit() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.reg.KillAll()
}

// Log streams the append-only log file to w.
func (s *Surface) Log(w io.Writer) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.log == nil {
		return nil
	}
	return s.log.Stream(w)
}

func reportUnknown(unknown []string) []string {
	if len(unknown) == 0 {
		return nil
	}
	return []string{unknownMessage(unknown)}
}
