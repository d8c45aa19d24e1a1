package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/api/v1beta1/configs"
	"github.com/macropower/synthaser/pkg/config"
	"github.com/macropower/synthaser/pkg/runner"
	"github.com/macropower/synthaser/pkg/yaml"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Configuration\n")
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return "/non/existent/file.yaml"
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), configs.New, configs.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	input := `apiVersion: synthaser.macropower.dev/v1beta1
kind: Configuration
threshold: 0.5
filter: global
workers: 2
output: yaml
where: '"PKS" in classification'
`

	cl := config.NewLoaderFromBytes([]byte(input), configs.New, configs.DefaultValidator)
	require.NoError(t, cl.Validate())

	cfg, err := cl.Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.Runner.Threshold, 0)
	assert.Equal(t, runner.FilterGlobal, cfg.Runner.Filter)
	assert.Equal(t, 2, cfg.Runner.Workers)
	assert.Equal(t, `"PKS" in classification`, cfg.Runner.Where)
	assert.EqualValues(t, "yaml", cfg.Output)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input        string
		wantContains string
		validate     bool
	}{
		"unknown kind": {
			input:        "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Policy\n",
			validate:     true,
			wantContains: "Policy",
		},
		"unknown field": {
			input:        "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Configuration\nprofiles: {}\n",
			validate:     true,
			wantContains: "profiles",
		},
		"invalid yaml": {
			input:        "apiVersion: [\n",
			validate:     true,
			wantContains: "apiVersion",
		},
		"threshold out of range": {
			input:        "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Configuration\nthreshold: 1.5\n",
			validate:     true,
			wantContains: "threshold",
		},
		"unknown kind on load": {
			input:        "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Policy\n",
			wantContains: "unknown kind \"Policy\"",
		},
		"invalid where": {
			input:        "apiVersion: synthaser.macropower.dev/v1beta1\nkind: Configuration\nwhere: 'header +'\n",
			wantContains: "header +",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator)

			var err error
			if tc.validate {
				err = cl.Validate()
			} else {
				_, err = cl.Load()
			}

			require.Error(t, err)

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			assert.Contains(t, err.Error(), tc.wantContains)
		})
	}
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes(
		[]byte("apiVersion: v0\nkind: Anything\n"),
		configs.New,
		configs.DefaultValidator,
		config.WithValidator(nil),
	)
	require.NoError(t, cl.Validate())
}
