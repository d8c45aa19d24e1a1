package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/internal/cli"
	"github.com/macropower/synthaser/pkg/rule"
	"github.com/macropower/synthaser/pkg/rulegraph"
	"github.com/macropower/synthaser/pkg/synthase"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	_, schemaErr := synthase.Parse([]byte("- sequence: MKV\n  domains: []\n"))
	require.Error(t, schemaErr)

	_, evalErr := rule.New("PKS", "01 and 1", rule.WithDomains("KS", "AT"))
	require.Error(t, evalErr)

	tcs := map[string]struct {
		err     error
		want    []string
		notWant []string
	}{
		"plain": {
			err:     errors.New("read input: permission denied"),
			want:    []string{"read input: permission denied"},
			notWant: []string{"Hint:", "--help"},
		},
		"usage": {
			err:  errors.New("unknown flag: --nope"),
			want: []string{"unknown flag: --nope", "--help", "for usage."},
		},
		"document source": {
			err: schemaErr,
			want: []string{
				"validate synthases: [",
				"invalid synthases: $[0]: missing property 'header'",
				"sequence: MKV",
				"Hint: run 'synthaser schema synthases'",
			},
		},
		"undefined rule": {
			err:  fmt.Errorf("load rules: %w", &rulegraph.LookupError{Name: "T1PKS"}),
			want: []string{`rule not found: "T1PKS"`, "synthaser rules show"},
		},
		"evaluator": {
			err:  evalErr,
			want: []string{`rule "PKS"`, "leading zero", "and, or, not and parentheses"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			cli.ErrorHandler(&buf, fang.Styles{}, tc.err)

			out := buf.String()
			for _, s := range tc.want {
				assert.Contains(t, out, s)
			}

			for _, s := range tc.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestErrorHandler_InvalidEnv(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "hits.yaml", testDocument)

	t.Setenv("SYNTHASER_THRESHOLD", "high")

	_, err := execute(t, "", doc)
	require.ErrorIs(t, err, cli.ErrInvalidEnv)

	var buf bytes.Buffer

	cli.ErrorHandler(&buf, fang.Styles{}, err)
	assert.Contains(t, buf.String(), "Hint: unset the variable")
}
