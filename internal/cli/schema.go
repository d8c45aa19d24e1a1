package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/synthaser/api/v1beta1/configs"
	"github.com/macropower/synthaser/pkg/synthase"
)

var schemas = map[string]func() []byte{
	"config":    configs.Schema,
	"synthases": synthase.Schema,
}

func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {config|synthases}",
		Short:     "Print the JSON schema of a file format",
		Example:   "  # Validate documents in your editor:\n  synthaser schema synthases > synthases.schema.json",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []cobra.Completion{"config", "synthases"},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, ok := schemas[args[0]]
			if !ok {
				return fmt.Errorf("invalid argument %q", args[0])
			}

			mustN(cmd.OutOrStdout().Write(schema()))

			return nil
		},
	}
}
