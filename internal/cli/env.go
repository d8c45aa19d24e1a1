package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrInvalidEnv is returned when a SYNTHASER_* variable holds a value its
// flag rejects.
var ErrInvalidEnv = errors.New("invalid environment variable")

const envErrorAnnotation = "synthaser/env-error"

// Flags that trigger a one-off action rather than configure a run. Reading
// them from the environment would repeat the action on every invocation.
var envExempt = map[string]bool{
	"help":         true,
	"show-config":  true,
	"write-config": true,
}

// bindEnvVars sets the flags of cmd from SYNTHASER_<FLAG_NAME> variables,
// e.g. --log-level from SYNTHASER_LOG_LEVEL. Arguments take precedence over
// the environment, which takes precedence over the configuration file.
//
// A value the flag rejects is recorded on the flag and reported by
// [checkEnv] once arguments are parsed, unless an argument overrides it.
func bindEnvVars(cmd *cobra.Command) {
	cmd.Flags().VisitAll(bindFlagToEnv)
	cmd.PersistentFlags().VisitAll(bindFlagToEnv)
}

func bindFlagToEnv(flag *pflag.Flag) {
	if envExempt[flag.Name] {
		return
	}

	envName := flagToEnvName(flag.Name)
	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		if flag.Annotations == nil {
			flag.Annotations = map[string][]string{}
		}

		flag.Annotations[envErrorAnnotation] = []string{fmt.Sprintf("%s=%q: %v", envName, envValue, err)}

		return
	}

	// Environment values override the configuration file like flags do.
	flag.Changed = true
}

// checkEnv returns the environment values rejected by flags of fs that no
// argument overrode.
func checkEnv(fs *pflag.FlagSet) error {
	var errs []error

	fs.VisitAll(func(flag *pflag.Flag) {
		msg, ok := flag.Annotations[envErrorAnnotation]
		if !ok || flag.Changed {
			return
		}

		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidEnv, msg[0]))
	})

	return errors.Join(errs...)
}

// flagToEnvName converts a flag name to its environment variable name.
// Example: "log-level" -> "SYNTHASER_LOG_LEVEL".
func flagToEnvName(flagName string) string {
	envName := strings.ReplaceAll(flagName, "-", "_")
	return strings.ToUpper(cmdName + "_" + envName)
}
