package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/synthaser/pkg/mcp"
	"github.com/macropower/synthaser/pkg/runner"
)

const serveMCPExamples = `  # Serve over stdio, for use as a local MCP server:
  synthaser serve-mcp

  # Serve over streamable HTTP with a default document:
  synthaser serve-mcp ./hits.yaml --address localhost:8080`

type ServeMCPArgs struct {
	*RootArgs
	ConfigArgs

	Address string
	Path    string
}

func NewServeMCPArgs(rootArgs *RootArgs) *ServeMCPArgs {
	return &ServeMCPArgs{
		RootArgs: rootArgs,
	}
}

func (sa *ServeMCPArgs) AddFlags(cmd *cobra.Command) {
	sa.ConfigArgs.AddFlags(cmd.Flags())

	cmd.Flags().StringVar(&sa.Address, "address", "", "Serve streamable HTTP at this address, stdio is used when unset")
}

func NewServeMCPCmd(sa *ServeMCPArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve-mcp [path]",
		Short:   "Serve classification tools over the Model Context Protocol",
		Example: serveMCPExamples,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				sa.Path = args[0]
			}

			return serveMCP(cmd, sa)
		},
	}
	sa.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func serveMCP(cmd *cobra.Command, sa *ServeMCPArgs) error {
	cfg, _, err := loadConfig(sa.ConfigPath)
	if err != nil {
		return err
	}

	sa.Apply(cmd.Flags(), cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ctx := commandContext(cmd)

	var paths []string
	if sa.Path != "" {
		paths = []string{sa.Path}
	}

	r, err := runner.NewContext(ctx, paths, runner.WithConfig(cfg.Runner))
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer r.Close()

	err = mcp.NewServer(sa.Address, r, sa.Path).Serve(ctx)
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}

	return nil
}
