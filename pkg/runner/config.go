package runner

import (
	"errors"
	"fmt"
	"slices"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/expr"
	"github.com/macropower/synthaser/pkg/synthase"
	"github.com/macropower/synthaser/pkg/yaml"
)

// ErrInvalidConfig indicates a [Config] field with an unusable value.
var ErrInvalidConfig = errors.New("invalid config")

// Filter selects how overlapping domain hits are removed before
// classification.
type Filter string

const (
	// FilterLabel collapses overlapping hits that share a label.
	FilterLabel Filter = "label"
	// FilterGlobal collapses overlapping hits regardless of label.
	FilterGlobal Filter = "global"
	// FilterNone keeps every hit.
	FilterNone Filter = "none"
)

// AllFilters contains every valid [Filter].
var AllFilters = []Filter{FilterLabel, FilterGlobal, FilterNone}

// Apply filters the hits of s in place.
func (f Filter) Apply(s *synthase.Synthase, threshold float64) {
	switch f {
	case FilterGlobal:
		s.FilterOverlapping(threshold)
	case FilterLabel, "":
		s.FilterSameLabel(threshold)
	case FilterNone:
	}
}

// Config defines the classification settings of a [Runner].
type Config struct {
	// Rules is the path to a rule file. The embedded default rules are used
	// when empty.
	Rules string `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Filter selects how overlapping domain hits are removed.
	Filter Filter `json:"filter,omitempty" jsonschema:"title=Filter,enum=label,enum=global,enum=none"`
	// Where is a CEL expression selecting which synthases are reported.
	Where string `json:"where,omitempty" jsonschema:"title=Where"`
	// Threshold is the fraction of the shorter hit that must be covered for
	// two hits to overlap.
	Threshold float64 `json:"threshold,omitempty" jsonschema:"title=Threshold,exclusiveMinimum=0,maximum=1"`
	// Workers limits concurrent classification. Zero uses GOMAXPROCS.
	Workers int `json:"workers,omitempty" jsonschema:"title=Workers,minimum=0"`
}

// NewConfig creates a new [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults sets unset fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Threshold == 0 {
		c.Threshold = domain.DefaultThreshold
	}
	if c.Filter == "" {
		c.Filter = FilterLabel
	}
}

// Validate validates the configuration. Errors carry the YAML path of the
// offending field.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return yaml.NewError(
			fmt.Errorf("%w: threshold %v must be in (0, 1]", ErrInvalidConfig, c.Threshold),
			yaml.WithPath(yaml.BuildPath("threshold")),
		)
	}

	if c.Filter != "" && !slices.Contains(AllFilters, c.Filter) {
		return yaml.NewError(
			fmt.Errorf("%w: unknown filter %q", ErrInvalidConfig, c.Filter),
			yaml.WithPath(yaml.BuildPath("filter")),
		)
	}

	if c.Workers < 0 {
		return yaml.NewError(
			fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers),
			yaml.WithPath(yaml.BuildPath("workers")),
		)
	}

	if c.Where != "" {
		_, err := expr.NewQuery(c.Where)
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(yaml.BuildPath("where")))
		}
	}

	return nil
}
