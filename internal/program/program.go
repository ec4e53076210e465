// Package program implements a named group of identically-configured
// Children plus group-level actions (execute/kill/restart/check) and the
// reload reconciliation logic (reload_has_substantive_change/assign_count/
// reload).
package program

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aihya/taskmaster/internal/child"
	"github.com/aihya/taskmaster/internal/enum"
	"github.com/aihya/taskmaster/internal/env"
	"github.com/aihya/taskmaster/internal/taskerr"
)

// Logger is the narrow logging contract Program and its Children emit
// events through.
type Logger interface {
	Logf(format string, args ...any)
}

// Config is a single Program's already-parsed property mapping, as handed
// down by the configuration loader.
type Config map[string]any

// Program is a named group of N identically-configured Children.
type Program struct {
	Name string

	Cmd         string
	Count       int
	AutoStart   bool
	AutoRestart enum.AutoRestart
	ExitCodes   map[int]bool
	StartTime   int // seconds
	StopTime    int // seconds
	Retries     int
	StopSignal  enum.Signal
	WorkingDir  string
	Stdout      string
	Stderr      string
	Umask       int
	UID         *int
	GID         *int
	Env         map[string]string

	config   Config // verbatim, for reload diffs
	children []*child.Child

	log     Logger
	envBase *env.Base
}

func defaults() *Program {
	return &Program{
		Count:      1,
		AutoStart:  false,
		ExitCodes:  map[int]bool{0: true},
		StopTime:   10,
		StopSignal: enum.TERM,
		Umask:      -1,
		Env:        map[string]string{},
	}
}

// New parses and validates properties into a Program named name. Keys
// absent from the schema, or whose value is null, or whose name starts
// with '_', are ignored (forward-compatible configs).
func New(name string, properties Config, log Logger, envBase *env.Base) (*Program, error) {
	p := defaults()
	p.Name = name
	p.log = log
	p.envBase = envBase
	p.config = properties

	for key, raw := range properties {
		if raw == nil || strings.HasPrefix(key, "_") {
			continue
		}
		f, known := schema[key]
		if !known {
			continue
		}
		val, err := f.validate(raw)
		if err != nil {
			return nil, taskerr.Config(fmt.Sprintf("%s.%s", name, key), err)
		}
		f.set(p, val)
	}

	if p.Cmd == "" {
		return nil, taskerr.Config(fmt.Sprintf("%s.cmd", name), fmt.Errorf("missing required field"))
	}

	p.children = p.newChildren(p.Count)
	return p, nil
}

func (p *Program) newChildren(n int) []*child.Child {
	out := make([]*child.Child, n)
	for i := range out {
		out[i] = child.New(p.Name, p.Cmd, p.log)
	}
	return out
}

func (p *Program) spawnAttrsFor(c *child.Child) child.SpawnAttrs {
	return child.SpawnAttrs{
		WorkDir: p.WorkingDir,
		Env:     p.envBase.Merge(p.Env),
		Umask:   p.Umask,
		UID:     p.UID,
		GID:     p.GID,
		Stdout:  p.Stdout,
		Stderr:  p.Stderr,
	}
}

// Execute sets every Child's spawn attributes from the current
// configuration and spawns it.
func (p *Program) Execute() {
	for _, c := range p.children {
		c.SetSpawnAttrs(p.spawnAttrsFor(c))
		c.Spawn()
	}
}

// Kill asks every running Child to stop via the configured stop signal.
func (p *Program) Kill() {
	for _, c := range p.children {
		if c.IsRunning() {
			c.Kill(p.StopSignal, true)
		}
	}
}

// Restart force-kills and respawns every Child.
func (p *Program) Restart() {
	for _, c := range p.children {
		c.Restart()
	}
}

// Check drives the periodic decision step for every Child.
func (p *Program) Check() {
	startTime := time.Duration(p.StartTime) * time.Second
	stopTime := time.Duration(p.StopTime) * time.Second
	for _, c := range p.children {
		c.Check(p.AutoRestart, stopTime, p.ExitCodes, startTime, p.Retries)
	}
}

// counts tallies the five categories status()/full_status() report.
type counts struct {
	launched, running, succeeded, failed, stopped int
}

func (p *Program) tally() counts {
	var c counts
	for _, ch := range p.children {
		if !ch.Launched() {
			continue
		}
		c.launched++
		if ch.IsRunning() {
			c.running++
			continue
		}
		if ch.KilledByUser() {
			c.stopped++
			continue
		}
		if code, done := ch.ExitStatus(); done {
			if code == 0 {
				c.succeeded++
			} else {
				c.failed++
			}
		}
	}
	return c
}

// Status reports one human-readable line summarising this Program.
func (p *Program) Status() string {
	c := p.tally()
	return fmt.Sprintf("%-20s launched=%d running=%d succeeded=%d failed=%d stopped=%d",
		p.Name, c.launched, c.running, c.succeeded, c.failed, c.stopped)
}

const (
	colGreen  = "\033[32m"
	colYellow = "\033[33m"
	colRed    = "\033[31m"
	colReset  = "\033[0m"
)

func paint(col, state string) string { return col + state + colReset }

func childState(c *child.Child, startTime time.Duration) string {
	switch {
	case c.IsRunning():
		if c.ElapsedTime() < startTime {
			return paint(colYellow, "starting")
		}
		return paint(colGreen, "running")
	case c.KilledByUser():
		return paint(colYellow, "stopped")
	default:
		code, done := c.ExitStatus()
		if !done {
			return paint(colRed, "failed")
		}
		if !c.LivedEnough(startTime) {
			return paint(colRed, "stopped-prematurely")
		}
		if code == 0 {
			return paint(colGreen, "success")
		}
		return paint(colRed, "failed")
	}
}

// FullStatus calls Status() first, then one line per launched Child with
// its pid, state, and elapsed time. It opportunistically refreshes state via
// Check before reporting.
func (p *Program) FullStatus() []string {
	p.Check()
	startTime := time.Duration(p.StartTime) * time.Second
	lines := []string{p.Status()}
	for i, c := range p.children {
		if !c.Launched() {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s:%d  pid=%d  state=%s  elapsed=%s",
			p.Name, i, c.PID(), childState(c, startTime), c.ElapsedTime().Truncate(time.Millisecond)))
	}
	return lines
}

// ReloadHasSubstantiveChange reports whether any key other than "count"
// present in newConfig differs from the stored configuration, or is new to
// it. A "count"-only difference is not substantive: that is adjusted in
// place by AssignCount/Reload.
func (p *Program) ReloadHasSubstantiveChange(newConfig Config) bool {
	for key, newVal := range newConfig {
		if key == "count" {
			continue
		}
		oldVal, present := p.config[key]
		if !present {
			return true
		}
		if !equalValue(oldVal, newVal) {
			return true
		}
	}
	return false
}

func equalValue(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// AssignCount validates and overwrites Count.
func (p *Program) AssignCount(newCount int) error {
	v, err := validateIntRange(1, 100)(newCount)
	if err != nil {
		return taskerr.Config(fmt.Sprintf("%s.count", p.Name), err)
	}
	p.Count = v.(int)
	return nil
}

// Reload reconciles children's length with Count: growing appends new
// Children (spawning them if AutoStart); shrinking sends the stop signal to
// every running Child of the removed tail first, then truncates. Removed
// Children are no longer checked, so one that ignores its stop signal is not
// escalated to SIGKILL.
func (p *Program) Reload() {
	current := len(p.children)
	switch {
	case current == p.Count:
		return
	case current < p.Count:
		fresh := p.newChildren(p.Count - current)
		p.children = append(p.children, fresh...)
		if p.AutoStart {
			for _, c := range fresh {
				c.SetSpawnAttrs(p.spawnAttrsFor(c))
				c.Spawn()
			}
		}
	default:
		removed := p.children[p.Count:]
		for _, c := range removed {
			if c.IsRunning() {
				c.Kill(p.StopSignal, true)
			}
		}
		p.children = p.children[:p.Count]
	}
}

// Children exposes the current Child slice for tests and diagnostics.
func (p *Program) Children() []*child.Child { return p.children }

// SortedNames returns a sorted copy of names, leaving the input slice
// untouched.
func SortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
