// Package registry implements the set of Programs keyed by name: initial
// load, reload reconciliation against a new configuration, and group
// command fan-out. The Registry does not manage its own locking — the
// shared mutual-exclusion primitive described for the Monitor/Control
// surface lives one layer up, in the top-level facade, so Monitor and
// Control share exactly one lock.
package registry

import (
	"sort"

	"github.com/aihya/taskmaster/internal/env"
	"github.com/aihya/taskmaster/internal/program"
)

// Loader is the external collaborator that reads and parses configuration
// files into a name -> property-mapping structure. Out of scope per the
// core's contract; the Registry only consumes its result.
type Loader interface {
	Load() (map[string]program.Config, error)
}

// Logger is the narrow logging contract the Registry emits diagnostics
// through (construction failures, reload warnings).
type Logger interface {
	Logf(format string, args ...any)
}

// Registry is the set of Programs keyed by name.
type Registry struct {
	programs map[string]*program.Program
	loader   Loader
	log      Logger
	envBase  *env.Base
}

// New constructs an empty Registry.
func New(loader Loader, log Logger) *Registry {
	return &Registry{
		programs: make(map[string]*program.Program),
		loader:   loader,
		log:      log,
		envBase:  env.NewBase(),
	}
}

// Load invokes the external loader once and populates the Registry. If the
// loader returns an empty mapping, the caller (cmd/taskmaster) is expected
// to print usage and exit 0; Load itself just reports that the mapping was
// empty via the returned bool. Construction failures are logged and
// skipped, not fatal to the batch.
func (r *Registry) Load() (empty bool, err error) {
	cfgs, err := r.loader.Load()
	if err != nil {
		return false, err
	}
	if len(cfgs) == 0 {
		return true, nil
	}
	for name, props := range cfgs {
		p, err := program.New(name, props, r.log, r.envBase)
		if err != nil {
			r.logf("skipping program %q: %v", name, err)
			continue
		}
		r.programs[name] = p
	}
	return false, nil
}

// Reload invokes the loader again and reconciles every existing Program
// name against the new configuration, then adds any names new to the
// config. Each name is handled all-or-nothing: a failure for one name is
// logged and the rest proceed.
func (r *Registry) Reload() error {
	cfgs, err := r.loader.Load()
	if err != nil {
		return err
	}

	for name, p := range r.programs {
		newProps, present := cfgs[name]
		if !present {
			p.Kill()
			delete(r.programs, name)
			continue
		}
		if p.ReloadHasSubstantiveChange(newProps) {
			fresh, err := program.New(name, newProps, r.log, r.envBase)
			if err != nil {
				r.logf("reload %q: %v (keeping previous program)", name, err)
				continue
			}
			p.Kill()
			r.programs[name] = fresh
			if fresh.AutoStart {
				fresh.Execute()
			}
			continue
		}
		if count, ok := newProps["count"]; ok {
			n, ok2 := asInt(count)
			if ok2 {
				if err := p.AssignCount(n); err != nil {
					r.logf("reload %q: %v", name, err)
					continue
				}
			}
		}
		p.Reload()
	}

	for name, props := range cfgs {
		if _, exists := r.programs[name]; exists {
			continue
		}
		p, err := program.New(name, props, r.log, r.envBase)
		if err != nil {
			r.logf("skipping new program %q: %v", name, err)
			continue
		}
		r.programs[name] = p
		if p.AutoStart {
			p.Execute()
		}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Launch executes every auto_start Program. Called once after the initial Load.
func (r *Registry) Launch() {
	for _, p := range r.programs {
		if p.AutoStart {
			p.Execute()
		}
	}
}

// Check drives the periodic decision step across every Program; called by
// the Monitor loop under the shared lock.
func (r *Registry) Check() {
	for _, p := range r.programs {
		p.Check()
	}
}

// Names returns every known Program name, sorted for deterministic output.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.programs))
	for name := range r.programs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the named Program, or (nil, false) if unknown.
func (r *Registry) Get(name string) (*program.Program, bool) {
	p, ok := r.programs[name]
	return p, ok
}

// Resolve splits requested names into known Programs (in request order) and
// the subset that were not found, de-duplicated, for the "programs not
// found: ..." report.
func (r *Registry) Resolve(names []string) (found []*program.Program, unknown []string) {
	seenUnknown := make(map[string]bool)
	for _, name := range names {
		if p, ok := r.programs[name]; ok {
			found = append(found, p)
			continue
		}
		if !seenUnknown[name] {
			seenUnknown[name] = true
			unknown = append(unknown, name)
		}
	}
	return found, unknown
}

// Status returns one status line per Program, in deterministic name order.
func (r *Registry) Status() []string {
	out := make([]string, 0, len(r.programs))
	for _, name := range r.Names() {
		out = append(out, r.programs[name].Status())
	}
	return out
}

// FullStatus returns full_status lines for every Program, in deterministic
// name order.
func (r *Registry) FullStatus() []string {
	var out []string
	for _, name := range r.Names() {
		out = append(out, r.programs[name].FullStatus()...)
	}
	return out
}

// KillAll stops every running Child across every Program. Used by the
// exit-time cleanup hook so supervised processes do not outlive the
// supervisor.
func (r *Registry) KillAll() {
	for _, p := range r.programs {
		p.Kill()
	}
}

func (r *Registry) logf(format string, args ...any) {
	if r.log != nil {
		r.log.Logf(format, args...)
	}
}
