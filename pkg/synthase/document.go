package synthase

import (
	"errors"
	"fmt"

	_ "embed"

	"github.com/macropower/synthaser/api"
	"github.com/macropower/synthaser/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -type synthases -o synthases.v1beta1.json

var (
	//go:embed synthases.v1beta1.json
	schemaJSON []byte

	// DefaultValidator validates synthase documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("synthases", "/synthases.v1beta1.json", schemaJSON)
)

// Document is a list of synthases, as read from and written to files.
type Document []*Synthase

// Schema returns the embedded JSON schema for synthase documents.
func Schema() []byte {
	return schemaJSON
}

// Load reads and parses the synthase document at path.
func Load(path string) ([]*Synthase, error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	synthases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return synthases, nil
}

// Parse decodes a YAML or JSON synthase document. The document is validated
// against the JSON schema before it is decoded, and each synthase is
// validated after.
func Parse(data []byte) ([]*Synthase, error) {
	ew := yaml.NewErrorWrapper(yaml.WithSource(data))

	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse synthases: %w", err)
	}

	err = DefaultValidator.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("validate synthases: %w", ew.Wrap(err))
	}

	var doc Document

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse synthases: %w", err)
	}

	for i, s := range doc {
		err = validateAt(s, i)
		if err != nil {
			return nil, fmt.Errorf("validate synthases: %w", ew.Wrap(err))
		}
	}

	return doc, nil
}

func validateAt(s *Synthase, i int) error {
	if s == nil {
		return yaml.NewError(errors.New("synthase is null"), yaml.WithPath(yaml.BuildPath(i)))
	}

	if s.Header == "" {
		return yaml.NewError(errors.New("header is required"), yaml.WithPath(yaml.BuildPath(i, "header")))
	}

	for j, h := range s.Domains {
		if h == nil {
			return yaml.NewError(errors.New("domain is null"), yaml.WithPath(yaml.BuildPath(i, "domains", j)))
		}

		err := h.Validate()
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(yaml.BuildPath(i, "domains", j)))
		}
	}

	return nil
}
