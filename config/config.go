package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the compiler settings read from soren.yaml. SinkChecks
// enables the runtime assertion that a sink parameter is not read after it
// has been consumed; Hints enables the informational diagnostics channel.
type Options struct {
	SinkChecks bool   `yaml:"sink_checks"`
	Hints      bool   `yaml:"hints"`
	CacheDir   string `yaml:"cache_dir"`
}

func Default() *Options {
	return &Options{Hints: true}
}

// Load reads options from path. A missing file is not an error: defaults
// apply.
func Load(path string) (*Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts, nil
}
