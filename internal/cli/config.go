package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/macropower/synthaser/api/v1beta1/configs"
	"github.com/macropower/synthaser/pkg/config"
	"github.com/macropower/synthaser/pkg/runner"
)

// ConfigArgs holds the flags that override values of the configuration file.
type ConfigArgs struct {
	Rules     string
	Filter    string
	Where     string
	Threshold float64
	Workers   int
}

func (ca *ConfigArgs) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&ca.Rules, "rules", "", "Path to a rule file, the built-in rules are used when unset")
	flags.StringVar(&ca.Filter, "filter", "label", "Overlapping hit filter, one of: [label global none]")
	flags.Float64Var(&ca.Threshold, "threshold", 0.9, "Fraction of a hit that must be covered for two hits to overlap")
	flags.IntVar(&ca.Workers, "workers", 0, "Number of synthases classified concurrently, 0 uses GOMAXPROCS")
	flags.StringVar(&ca.Where, "where", "", "CEL expression selecting the synthases to report")
}

// Apply overrides cfg with the flags that were set.
func (ca *ConfigArgs) Apply(flags *pflag.FlagSet, cfg *configs.Config) {
	if flags.Changed("rules") {
		cfg.Runner.Rules = ca.Rules
	}
	if flags.Changed("filter") {
		cfg.Runner.Filter = runner.Filter(ca.Filter)
	}
	if flags.Changed("threshold") {
		cfg.Runner.Threshold = ca.Threshold
	}
	if flags.Changed("workers") {
		cfg.Runner.Workers = ca.Workers
	}
	if flags.Changed("where") {
		cfg.Runner.Where = ca.Where
	}
}

// loadConfig loads the configuration file at path, or at the default path
// when path is empty. A missing default file yields the default
// configuration.
func loadConfig(path string) (*configs.Config, string, error) {
	explicit := path != ""
	if !explicit {
		path = configs.GetPath()
	}

	cl, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		slog.Debug("no configuration file, using defaults", slog.String("path", path))

		return configs.New(), path, nil
	}
	if err != nil {
		return nil, path, fmt.Errorf("read config %q: %w", path, err)
	}

	err = cl.Validate()
	if err != nil {
		return nil, path, fmt.Errorf("invalid config %q: %w", path, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, path, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, path, nil
}
