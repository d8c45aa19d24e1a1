package synthase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/macropower/synthaser/pkg/yaml"
)

// ErrUnknownFormat indicates an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output format for classified synthases.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// AllFormats lists every supported [Format].
var AllFormats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatMarkdown}

// ParseFormat returns the [Format] named by s.
func ParseFormat(s string) (Format, error) {
	for _, f := range AllFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encode writes synthases to w in the given format. The json and yaml
// formats write full documents that can be read back with [Parse]; the
// other formats write one summary row per synthase.
func Encode(w io.Writer, synthases []*Synthase, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(nonNil(synthases))
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)

		err := enc.Encode(nonNil(synthases))
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()

	case FormatTable, FormatCSV, FormatMarkdown:
		t := summaryTable(w, synthases)

		switch format {
		case FormatCSV:
			t.RenderCSV()
		case FormatMarkdown:
			t.RenderMarkdown()
		default:
			t.Render()
		}

		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func summaryTable(w io.Writer, synthases []*Synthase) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Header", "Classification", "Architecture", "Length"})

	for _, s := range synthases {
		t.AppendRow(table.Row{
			s.Header,
			ClassificationString(s.Classification),
			s.Architecture(),
			strconv.Itoa(s.Length()),
		})
	}

	return t
}

// ClassificationString joins a classification path with " > ", or returns
// "Unclassified" for an empty path.
func ClassificationString(path []string) string {
	if len(path) == 0 {
		return "Unclassified"
	}

	return strings.Join(path, " > ")
}

func nonNil(synthases []*Synthase) []*Synthase {
	if synthases == nil {
		return []*Synthase{}
	}

	return synthases
}
