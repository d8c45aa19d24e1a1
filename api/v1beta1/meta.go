// Package v1beta1 contains the v1beta1 API types for synthaser configuration.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"

	"github.com/macropower/synthaser/pkg/yaml"
)

// APIVersion is the current API version for all synthaser configuration kinds.
const APIVersion = "synthaser.macropower.dev/v1beta1"

// ValidAPIVersions contains all valid API versions.
var ValidAPIVersions = []string{APIVersion}

var (
	// ErrUnsupportedAPIVersion is returned for a document of another API version.
	ErrUnsupportedAPIVersion = errors.New("unsupported apiVersion")
	// ErrUnknownKind is returned for a document kind this version does not define.
	ErrUnknownKind = errors.New("unknown kind")
)

// TypeMeta identifies a synthaser document by API version and kind.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// NewTypeMeta returns the [TypeMeta] of a kind at the current [APIVersion].
func NewTypeMeta(kind string) TypeMeta {
	return TypeMeta{APIVersion: APIVersion, Kind: kind}
}

func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check reports whether tm names a supported API version and one of kinds.
// Errors point at the offending key so they can be annotated with source.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return yaml.NewError(
			fmt.Errorf("%w %q, want %s", ErrUnsupportedAPIVersion, tm.APIVersion, APIVersion),
			yaml.WithPath(yaml.BuildPath("apiVersion")),
		)
	}

	if !slices.Contains(kinds, tm.Kind) {
		return yaml.NewError(
			fmt.Errorf("%w %q, want one of %v", ErrUnknownKind, tm.Kind, kinds),
			yaml.WithPath(yaml.BuildPath("kind")),
		)
	}

	return nil
}

// Object is a versioned synthaser document that can be loaded by
// [github.com/macropower/synthaser/pkg/config.Loader].
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
	Validate() error
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// document schema to the given constants.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	restrictToConsts(jss, "apiVersion", "API Version", apiVersions)
	restrictToConsts(jss, "kind", "Kind", kinds)
}

func restrictToConsts(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	_, _ = jss.Properties.Set(property, prop)
}
