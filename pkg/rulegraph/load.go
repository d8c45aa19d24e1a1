package rulegraph

import (
	"fmt"

	_ "embed"

	"github.com/macropower/synthaser/api"
	"github.com/macropower/synthaser/pkg/yaml"
)

//go:embed rules.yaml
var defaultRules []byte

// DefaultRules returns the embedded default rule file.
func DefaultRules() []byte {
	return defaultRules
}

// Default returns the [Graph] defined by the embedded default rule file.
func Default() (*Graph, error) {
	g, err := Parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("default rules: %w", err)
	}

	return g, nil
}

// MustDefault is like [Default] but panics on error.
func MustDefault() *Graph {
	g, err := Default()
	if err != nil {
		panic(err)
	}

	return g
}

// Load reads and parses the rule file at path. An empty path loads the
// embedded defaults.
func Load(path string) (*Graph, error) {
	if path == "" {
		return Default()
	}

	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}

// Parse decodes and validates a YAML or JSON rule file.
func Parse(data []byte) (*Graph, error) {
	ew := yaml.NewErrorWrapper(yaml.WithSource(data))

	g := &Graph{}

	err := yaml.Unmarshal(data, g)
	if err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	err = g.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate rules: %w", ew.Wrap(err))
	}

	return g, nil
}

// Marshal encodes g as a YAML rule file.
func (g *Graph) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal rules: %w", err)
	}

	return b, nil
}
