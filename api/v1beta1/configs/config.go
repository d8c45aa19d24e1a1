// Package configs provides the global Configuration type for synthaser.
package configs

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/synthaser/api"
	"github.com/macropower/synthaser/api/v1beta1"
	"github.com/macropower/synthaser/pkg/runner"
	"github.com/macropower/synthaser/pkg/synthase"
	"github.com/macropower/synthaser/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen -type configs -o configs.v1beta1.json

// Kind is the kind of the global configuration document.
const Kind = "Configuration"

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for global configurations.
	ValidKinds = []string{Kind}

	// DefaultValidator validates global configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("configuration", "/configs.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the global synthaser configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	Runner *runner.Config `json:",inline"`
	// Output is the default output format of the classify command.
	Output           synthase.Format `json:"output,omitempty" jsonschema:"title=Output,enum=table,enum=json,enum=yaml,enum=csv,enum=markdown"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new global [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.NewTypeMeta(Kind),
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Runner == nil {
		c.Runner = runner.NewConfig()
	} else {
		c.Runner.EnsureDefaults()
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	err := c.Check(ValidKinds...)
	if err != nil {
		return err //nolint:wrapcheck // Annotated by the loader.
	}

	if c.Runner != nil {
		err = c.Runner.Validate()
		if err != nil {
			return fmt.Errorf("validate runner config: %w", err)
		}
	}

	if c.Output != "" {
		_, err = synthase.ParseFormat(string(c.Output))
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(yaml.BuildPath("output")))
		}
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// Default returns the embedded default config.yaml.
func Default() []byte {
	return defaultConfigYAML
}

// Schema returns the embedded JSON schema for the configuration.
func Schema() []byte {
	return schemaJSON
}

// GetPath returns the path to the global configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
