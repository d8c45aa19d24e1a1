package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/rule"
	"github.com/macropower/synthaser/pkg/rulegraph"
	"github.com/macropower/synthaser/pkg/yaml"
)

var (
	errorBody    = lipgloss.NewStyle().MarginLeft(2)
	errorSnippet = lipgloss.NewStyle().MarginLeft(4)
)

// Arguments of the schema command, by validator subject.
var schemaArgs = map[string]string{
	"configuration": "config",
	"synthases":     "synthases",
}

// ErrorHandler renders command errors. An error in a YAML document is shown
// as a summary line followed by the annotated source, and errors with a known
// cause end with a hint.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	summary, snippet := splitSource(err)

	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, errorBody.Render(summary)))
	mustN(fmt.Fprintln(w))

	if snippet != "" {
		mustN(fmt.Fprintln(w, errorSnippet.Render(snippet)))
		mustN(fmt.Fprintln(w))
	}

	if hint := errorHint(err); hint != "" {
		mustN(fmt.Fprintln(w, errorBody.Render("Hint: "+hint)))
		mustN(fmt.Fprintln(w))
	}

	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))
	}
}

// splitSource separates the source annotation of a [*yaml.Error] from the
// rest of the message. The snippet is empty when err carries no source.
func splitSource(err error) (string, string) {
	msg := err.Error()

	var yamlErr *yaml.Error
	if !errors.As(err, &yamlErr) || len(yamlErr.Source) == 0 {
		return msg, ""
	}

	annotated := yamlErr.Error()

	head, src, ok := strings.Cut(annotated, "\n")
	if !ok || !strings.HasSuffix(msg, annotated) {
		return msg, ""
	}

	return strings.TrimSuffix(msg, annotated) + strings.TrimSuffix(head, ":"), src
}

func errorHint(err error) string {
	var schemaErr *yaml.SchemaError

	switch {
	case errors.Is(err, ErrInvalidEnv):
		return "unset the variable or pass the flag on the command line."
	case errors.Is(err, rulegraph.ErrRuleNotFound):
		return "graph entries must name a rule defined under rules. " +
			"Run 'synthaser rules show' to list the loaded rules."
	case errors.Is(err, rule.ErrEvaluation):
		return "evaluators combine domain positions with and, or, not and parentheses, " +
			`e.g. "0 and (1 or 2)". Write True for a rule that always matches.`
	case errors.Is(err, domain.ErrInvalidHit):
		return "a domain hit must start at 1 or later and end within the sequence, no earlier than its start."
	case errors.As(err, &schemaErr):
		if arg, ok := schemaArgs[schemaErr.Subject]; ok {
			return fmt.Sprintf("run 'synthaser schema %s' to print the expected format.", arg)
		}
	}

	return ""
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
