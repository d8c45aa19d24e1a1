package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/synthaser/pkg/log"
	"github.com/macropower/synthaser/pkg/telemetry"
)

const (
	cmdName = "synthaser"
	cmdDesc = `Rule-based classification of multi-domain synthases from conserved domain hits.`
)

type RootArgs struct {
	shutdown     telemetry.ShutdownFunc
	LogLevel     string
	LogFormat    string
	ConfigPath   string
	OTLPEndpoint string
	OTLPInsecure bool
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the synthaser configuration file")
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "OTLP/gRPC endpoint to export traces to")
	cmd.PersistentFlags().
		BoolVar(&ra.OTLPInsecure, "otlp-insecure", false, "Disable TLS for the OTLP exporter")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	classifyArgs := NewClassifyArgs(args)

	classifyCmd := NewClassifyCmd(classifyArgs)
	cmd := &cobra.Command{
		Use:                cmdName + " [path...]",
		Short:              cmdDesc,
		Example:            classifyExamples,
		PersistentPreRunE:  setup(args),
		PersistentPostRunE: teardown(args),
		ValidArgsFunction:  classifyCmd.ValidArgsFunction,
		Args:               classifyCmd.Args,
		RunE:               classifyCmd.RunE,
		SilenceUsage:       true,
	}

	args.AddFlags(cmd)
	classifyArgs.AddFlags(cmd)
	cmd.AddCommand(
		classifyCmd,
		NewExtractCmd(NewExtractArgs(args)),
		NewRulesCmd(args),
		NewServeMCPCmd(NewServeMCPArgs(args)),
		NewSchemaCmd(),
	)

	bindEnvVars(cmd)

	return cmd
}

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		err := checkEnv(cmd.Flags())
		if err != nil {
			return err
		}

		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		ra.shutdown, err = telemetry.Setup(commandContext(cmd), ra.OTLPEndpoint, ra.OTLPInsecure)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		return nil
	}
}

func teardown(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if ra.shutdown == nil {
			return nil
		}

		//nolint:contextcheck // The command context may already be canceled.
		err := ra.shutdown(context.WithoutCancel(commandContext(cmd)))
		if err != nil {
			return fmt.Errorf("teardown telemetry: %w", err)
		}

		return nil
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		return context.Background()
	}

	return ctx
}
