package program

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"github.com/aihya/taskmaster/internal/enum"
	"github.com/aihya/taskmaster/internal/taskerr"
)

// field is one entry of the (key, validator, setter) schema table described
// for dynamic config-to-attribute assignment: each recognised key is
// validated against its expected shape and, on success, assigned onto the
// Program via its setter.
type field struct {
	validate func(v any) (any, error)
	set      func(p *Program, v any)
}

var schema map[string]field

func init() {
	schema = map[string]field{
		"cmd": {
			validate: validateNonEmptyString,
			set:      func(p *Program, v any) { p.Cmd = v.(string) },
		},
		"count": {
			validate: validateIntRange(1, 100),
			set:      func(p *Program, v any) { p.Count = v.(int) },
		},
		"auto_start": {
			validate: validateBool,
			set:      func(p *Program, v any) { p.AutoStart = v.(bool) },
		},
		"auto_restart": {
			validate: validateAutoRestart,
			set:      func(p *Program, v any) { p.AutoRestart = v.(enum.AutoRestart) },
		},
		"exit_codes": {
			validate: validateExitCodes,
			set:      func(p *Program, v any) { p.ExitCodes = v.(map[int]bool) },
		},
		"start_time": {
			validate: validateNonNegativeInt,
			set:      func(p *Program, v any) { p.StartTime = v.(int) },
		},
		"retries": {
			validate: validateNonNegativeInt,
			set:      func(p *Program, v any) { p.Retries = v.(int) },
		},
		"stop_signal": {
			validate: validateSignal,
			set:      func(p *Program, v any) { p.StopSignal = v.(enum.Signal) },
		},
		"stop_time": {
			validate: validateNonNegativeInt,
			set:      func(p *Program, v any) { p.StopTime = v.(int) },
		},
		"working_dir": {
			validate: validateString,
			set:      func(p *Program, v any) { p.WorkingDir = v.(string) },
		},
		"stdout": {
			validate: validateString,
			set:      func(p *Program, v any) { p.Stdout = v.(string) },
		},
		"stderr": {
			validate: validateString,
			set:      func(p *Program, v any) { p.Stderr = v.(string) },
		},
		"umask": {
			validate: validateIntRange(0, 0o777),
			set:      func(p *Program, v any) { p.Umask = v.(int) },
		},
		"uid": {
			validate: validateUID,
			set:      func(p *Program, v any) { u := v.(int); p.UID = &u },
		},
		"gid": {
			validate: validateGID,
			set:      func(p *Program, v any) { g := v.(int); p.GID = &g },
		},
		"env": {
			validate: validateEnvMap,
			set:      func(p *Program, v any) { p.Env = v.(map[string]string) },
		},
	}
}

func validateString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, taskerr.Config("expected a string", nil)
	}
	return s, nil
}

func validateNonEmptyString(v any) (any, error) {
	s, err := validateString(v)
	if err != nil {
		return nil, err
	}
	if s.(string) == "" {
		return nil, taskerr.Config("missing required field", nil)
	}
	return s, nil
}

func validateBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, taskerr.Config("expected a bool", nil)
	}
	return b, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func validateIntRange(lo, hi int) func(any) (any, error) {
	return func(v any) (any, error) {
		n, ok := toInt(v)
		if !ok {
			return nil, taskerr.Config("expected an integer", nil)
		}
		if n < lo || n > hi {
			return nil, taskerr.Config(fmt.Sprintf("value %d out of range [%d,%d]", n, lo, hi), nil)
		}
		return n, nil
	}
}

func validateNonNegativeInt(v any) (any, error) {
	n, ok := toInt(v)
	if !ok {
		return nil, taskerr.Config("expected an integer", nil)
	}
	if n < 0 {
		return nil, taskerr.Config("expected a non-negative integer", nil)
	}
	return n, nil
}

func validateAutoRestart(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, taskerr.Config("expected a string", nil)
	}
	a, err := enum.ParseAutoRestart(s)
	if err != nil {
		return nil, taskerr.Config("bad auto_restart value", err)
	}
	return a, nil
}

func validateSignal(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, taskerr.Config("expected a string", nil)
	}
	sig, err := enum.ParseSignal(s)
	if err != nil {
		return nil, taskerr.Config("bad stop_signal value", err)
	}
	return sig, nil
}

// validateExitCodes decodes the list into the set the restart decision
// consults. Every code must fit an 8-bit exit status.
func validateExitCodes(v any) (any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, taskerr.Config("expected a list of integers", nil)
	}
	out := make(map[int]bool, len(list))
	for _, item := range list {
		n, ok := toInt(item)
		if !ok || n < 0 || n > 255 {
			return nil, taskerr.Config(fmt.Sprintf("exit code %v out of range [0,255]", item), nil)
		}
		out[n] = true
	}
	return out, nil
}

func validateUID(v any) (any, error) { return resolveUser(v) }
func validateGID(v any) (any, error) { return resolveGroup(v) }

func resolveUser(v any) (any, error) {
	if n, ok := toInt(v); ok {
		if _, err := user.LookupId(strconv.Itoa(n)); err != nil {
			return nil, taskerr.Config(fmt.Sprintf("uid %d does not resolve on host", n), err)
		}
		return n, nil
	}
	name, ok := v.(string)
	if !ok {
		return nil, taskerr.Config("expected an int or username", nil)
	}
	u, err := user.Lookup(name)
	if err != nil {
		return nil, taskerr.Config(fmt.Sprintf("user %q does not resolve on host", name), err)
	}
	n, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, taskerr.Config("unexpected uid format from host", err)
	}
	return n, nil
}

func resolveGroup(v any) (any, error) {
	if n, ok := toInt(v); ok {
		if _, err := user.LookupGroupId(strconv.Itoa(n)); err != nil {
			return nil, taskerr.Config(fmt.Sprintf("gid %d does not resolve on host", n), err)
		}
		return n, nil
	}
	name, ok := v.(string)
	if !ok {
		return nil, taskerr.Config("expected an int or group name", nil)
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return nil, taskerr.Config(fmt.Sprintf("group %q does not resolve on host", name), err)
	}
	n, err := strconv.Atoi(g.Gid)
	if err != nil {
		return nil, taskerr.Config("unexpected gid format from host", err)
	}
	return n, nil
}

func validateEnvMap(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, taskerr.Config("expected a mapping", nil)
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprintf("%v", val)
	}
	return out, nil
}
