package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/internal/cli"
)

func TestBindEnvVars(t *testing.T) {
	tcs := map[string]struct {
		envVars       map[string]string
		wantLogLevel  string
		wantLogFormat string
		args          []string
	}{
		"environment variables are bound when no args provided": {
			envVars: map[string]string{
				"SYNTHASER_LOG_LEVEL":  "debug",
				"SYNTHASER_LOG_FORMAT": "json",
			},
			args:          []string{},
			wantLogLevel:  "debug",
			wantLogFormat: "json",
		},
		"command line args take precedence over environment variables": {
			envVars: map[string]string{
				"SYNTHASER_LOG_LEVEL":  "debug",
				"SYNTHASER_LOG_FORMAT": "json",
			},
			args:          []string{"--log-level", "error", "--log-format", "text"},
			wantLogLevel:  "error",
			wantLogFormat: "text",
		},
		"partial environment variable override": {
			envVars: map[string]string{
				"SYNTHASER_LOG_LEVEL": "warn",
			},
			args:          []string{"--log-format", "json"},
			wantLogLevel:  "warn",
			wantLogFormat: "json",
		},
		"no environment variables uses defaults": {
			envVars:       map[string]string{},
			args:          []string{},
			wantLogLevel:  "info", // Default value.
			wantLogFormat: "text", // Default value.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for key, val := range tc.envVars {
				t.Setenv(key, val)
			}

			cmd := cli.NewRootCmd()
			cmd.SetArgs(tc.args)

			// Parse flags (this triggers environment variable binding).
			err := cmd.ParseFlags(tc.args)
			require.NoError(t, err)

			// Check flag values.
			logLevel, err := cmd.Flags().GetString("log-level")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogLevel, logLevel)

			logFormat, err := cmd.Flags().GetString("log-format")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogFormat, logFormat)
		})
	}
}

// Test that flag usage strings are updated to include environment variable names.
func TestEnvironmentVariableUsageUpdate(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCmd()

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Contains(t, logLevelFlag.Usage, "$SYNTHASER_LOG_LEVEL")

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Contains(t, configFlag.Usage, "$SYNTHASER_CONFIG")

	thresholdFlag := cmd.Flags().Lookup("threshold")
	require.NotNil(t, thresholdFlag)
	assert.Contains(t, thresholdFlag.Usage, "$SYNTHASER_THRESHOLD")
}

func TestBindEnvVars_MarksChanged(t *testing.T) {
	t.Setenv("SYNTHASER_THRESHOLD", "0.5")

	cmd := cli.NewRootCmd()

	flag := cmd.Flags().Lookup("threshold")
	require.NotNil(t, flag)
	assert.Equal(t, "0.5", flag.Value.String())
	assert.True(t, flag.Changed)
}

func TestBindEnvVars_SkipsActionFlags(t *testing.T) {
	t.Setenv("SYNTHASER_WRITE_CONFIG", "true")
	t.Setenv("SYNTHASER_SHOW_CONFIG", "true")

	cmd := cli.NewRootCmd()

	for _, name := range []string{"write-config", "show-config"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.Value.String())
		assert.False(t, flag.Changed)
		assert.NotContains(t, flag.Usage, "$SYNTHASER_")
	}
}

func TestBindEnvVars_InvalidValue(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "hits.yaml", testDocument)

	t.Setenv("SYNTHASER_THRESHOLD", "most")

	_, err := execute(t, "", doc, "-o", "json")
	require.ErrorIs(t, err, cli.ErrInvalidEnv)
	assert.ErrorContains(t, err, `SYNTHASER_THRESHOLD="most"`)

	// An argument overrides the rejected value.
	out, err := execute(t, "", doc, "-o", "json", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Equal(t, []string{"NRPS"}, classifications(t, out)["nrps"])
}
