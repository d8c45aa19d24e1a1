// Package yaml wraps [github.com/goccy/go-yaml] with the decoder and encoder
// settings used for synthaser documents, and provides errors that annotate
// the offending location in the source document.
//
// JSON is a subset of YAML, so rule files and subject documents may be
// written in either format.
package yaml
