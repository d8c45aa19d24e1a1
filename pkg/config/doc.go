// Package config loads versioned synthaser configuration files.
//
// A [Loader] validates YAML data against a JSON schema, decodes it into a
// [v1beta1.Object] and reports errors annotated with the offending source.
package config
