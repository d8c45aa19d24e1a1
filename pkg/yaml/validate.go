package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var schemaPrinter = message.NewPrinter(language.English)

// SchemaError is a document that does not conform to its JSON schema. It
// describes the single most specific violation, which is usually the one a
// user needs to fix.
type SchemaError struct {
	// Err is the full validation result.
	Err *jsonschema.ValidationError
	// Subject names the kind of document, e.g. "synthases".
	Subject string
	// Location is the YAML path of the violating value.
	Location string
	// Reason describes the violation, e.g. "missing property 'header'".
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s: %s: %s", e.Subject, e.Location, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Validator checks decoded YAML documents against a JSON schema.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema  *jsonschema.Schema
	subject string
}

// NewValidator compiles schemaData, registered under url. The subject names
// the kind of document in error messages.
func NewValidator(subject, url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss, subject: subject}, nil
}

func MustNewValidator(subject, url string, schemaData []byte) *Validator {
	v, err := NewValidator(subject, url, schemaData)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate checks data, as decoded from YAML into `any`. A violation is
// returned as an [*Error] wrapping a [*SchemaError], with the path of the
// violating value so it can be annotated with source.
func (v *Validator) Validate(data any) error {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("validate %s: %w", v.subject, err)
	}

	cause := deepestCause(validationErr)
	path := pathInDocument(data, cause.InstanceLocation)

	return NewError(&SchemaError{
		Err:      validationErr,
		Subject:  v.subject,
		Location: path.String(),
		Reason:   cause.ErrorKind.LocalizedString(schemaPrinter),
	}, WithPath(path))
}

// deepestCause returns the leaf cause with the longest instance location.
// Ties go to the first cause.
func deepestCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	var best *jsonschema.ValidationError

	for _, cause := range err.Causes {
		c := deepestCause(cause)
		if best == nil || len(c.InstanceLocation) > len(best.InstanceLocation) {
			best = c
		}
	}

	if best == nil {
		return err
	}

	return best
}

// pathInDocument converts a JSON pointer location into a YAML path, using the
// document to tell sequence indexes from mapping keys that look like numbers.
func pathInDocument(data any, location []string) *yaml.Path {
	segments := make([]any, 0, len(location))
	node := data

	for _, part := range location {
		switch n := node.(type) {
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(n) {
				return BuildPath(segments...)
			}

			segments = append(segments, i)
			node = n[i]

		case map[string]any:
			segments = append(segments, part)
			node = n[part]

		default:
			return BuildPath(segments...)
		}
	}

	return BuildPath(segments...)
}
