// Package configloader reads the taskmaster configuration files named on
// the command line and exposes their unioned top-level mapping: program
// name -> property mapping. This is the external collaborator whose
// contract is specified, not its implementation — the core (registry,
// program) only consumes the parsed map this package returns.
package configloader

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/aihya/taskmaster/internal/program"
)

// Loader reads one or more YAML configuration files, each a top-level
// mapping from program name to property mapping, and unions them
// (later file wins on key collision).
type Loader struct {
	paths []string
}

// New builds a Loader over the given config file paths, in the order
// they should be merged (later wins).
func New(paths []string) *Loader {
	return &Loader{paths: paths}
}

// Load reads every configured file as a distinct document and unions their
// top-level maps.
func (l *Loader) Load() (map[string]program.Config, error) {
	merged := make(map[string]map[string]any)

	for _, path := range l.paths {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}

		var doc map[string]map[string]any
		if err := v.Unmarshal(&doc, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
			return nil, fmt.Errorf("decoding config file %q: %w", path, err)
		}
		for name, props := range doc {
			merged[name] = props
		}
	}

	out := make(map[string]program.Config, len(merged))
	for name, props := range merged {
		out[name] = program.Config(props)
	}
	return out, nil
}
