package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/synthaser/api/v1beta1/configs"
	"github.com/macropower/synthaser/pkg/runner"
	"github.com/macropower/synthaser/pkg/synthase"
)

const (
	classifyExamples = `  # Classify the synthases in a document:
  synthaser classify ./hits.yaml

  # Classify several documents and print a markdown table:
  synthaser ./a.yaml ./b.json -o markdown

  # Only report hybrid synthases:
  synthaser ./hits.yaml --where '"Hybrid" in classification'

  # Use a custom rule file and re-run when it or the input changes:
  synthaser ./hits.yaml --rules ./rules.yaml --watch

  # Read a document from stdin:
  cat ./hits.yaml | synthaser -

  # Write the default configuration file and exit:
  synthaser --write-config`
)

// ErrStdinWithPaths is returned when stdin is combined with other inputs.
var ErrStdinWithPaths = errors.New("stdin ('-') cannot be combined with other paths")

type ClassifyArgs struct {
	*RootArgs
	ConfigArgs

	Output      string
	Paths       []string
	StdinData   []byte
	Watch       bool
	WriteConfig bool
	ShowConfig  bool
}

func NewClassifyArgs(rootArgs *RootArgs) *ClassifyArgs {
	return &ClassifyArgs{
		RootArgs: rootArgs,
	}
}

func (ca *ClassifyArgs) AddFlags(cmd *cobra.Command) {
	ca.ConfigArgs.AddFlags(cmd.Flags())

	cmd.Flags().StringVarP(&ca.Output, "output", "o", "",
		fmt.Sprintf("Output format, one of: %s (default table on a terminal, otherwise json)", synthase.AllFormats))
	cmd.Flags().BoolVarP(&ca.Watch, "watch", "w", false, "Watch the input and rule files and re-run on changes")
	cmd.Flags().BoolVar(&ca.WriteConfig, "write-config", false, "Write the default configuration file and exit")
	cmd.Flags().BoolVar(&ca.ShowConfig, "show-config", false, "Print the active configuration and exit")

	err := cmd.RegisterFlagCompletionFunc("output", formatCompletion)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("filter", filterCompletion)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkFlagFilename("rules", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark rules flag: %w", err))
	}
}

func NewClassifyCmd(ca *ClassifyArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "classify [path...]",
		Short:   "Classify the synthases in one or more documents",
		Example: classifyExamples,
		Args:    cobra.ArbitraryArgs,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return []cobra.Completion{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ca.Paths = args

			return classify(cmd, ca)
		},
	}
	ca.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func formatCompletion(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
	completions := make([]cobra.Completion, 0, len(synthase.AllFormats))
	for _, f := range synthase.AllFormats {
		completions = append(completions, string(f))
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

func filterCompletion(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
	completions := make([]cobra.Completion, 0, len(runner.AllFilters))
	for _, f := range runner.AllFilters {
		completions = append(completions, string(f))
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

func classify(cmd *cobra.Command, ca *ClassifyArgs) error {
	if ca.WriteConfig {
		path := ca.ConfigPath
		if path == "" {
			path = configs.GetPath()
		}

		return configs.WriteDefault(path, false) //nolint:wrapcheck // Already wrapped.
	}

	cfg, configPath, err := loadConfig(ca.ConfigPath)
	if err != nil {
		return err
	}

	ca.Apply(cmd.Flags(), cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if ca.ShowConfig {
		slog.Info("active configuration", slog.String("path", configPath))

		b, err := cfg.MarshalYAML()
		if err != nil {
			return fmt.Errorf("marshal config yaml: %w", err)
		}

		mustN(fmt.Fprint(cmd.OutOrStdout(), string(b)))

		return nil
	}

	format, err := outputFormat(cmd, ca.Output, cfg.Output)
	if err != nil {
		return err
	}

	if slices.Contains(ca.Paths, "-") {
		if len(ca.Paths) > 1 {
			return ErrStdinWithPaths
		}

		ca.StdinData, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		ca.Paths = nil
		ca.Watch = false
	}

	ctx := commandContext(cmd)

	r, err := runner.NewContext(ctx, ca.Paths,
		runner.WithConfig(cfg.Runner),
		runner.WithWatch(ca.Watch),
	)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer r.Close()

	var out runner.Output
	if ca.StdinData != nil {
		synthases, err := synthase.Parse(ca.StdinData)
		if err != nil {
			return fmt.Errorf("parse stdin: %w", err)
		}

		out = r.ClassifyContext(ctx, synthases)
	} else {
		out = r.RunContext(ctx)
	}

	if !ca.Watch {
		return writeOutput(cmd.OutOrStdout(), out, format)
	}

	err = writeOutput(cmd.OutOrStdout(), out, format)
	if err != nil {
		slog.Error("classify", slog.Any("err", err))
	}

	ch := make(chan runner.Event, 8)
	r.Subscribe(ch)

	go r.RunOnEvent()

	slog.Info("watching for changes", slog.Any("paths", ca.Paths), slog.String("rules", cfg.Runner.Rules))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt := <-ch:
			end, ok := evt.(runner.EventEnd)
			if !ok {
				continue
			}

			err := writeOutput(cmd.OutOrStdout(), runner.Output(end), format)
			if err != nil {
				slog.Error("classify", slog.Any("err", err))
			}
		}
	}
}

// outputFormat resolves the output format from the flag, then the
// configuration, then whether w is a terminal.
func outputFormat(cmd *cobra.Command, flagValue string, configured synthase.Format) (synthase.Format, error) {
	if flagValue != "" {
		f, err := synthase.ParseFormat(flagValue)
		if err != nil {
			return "", fmt.Errorf("parse output flag: %w", err)
		}

		return f, nil
	}

	if configured != "" {
		return configured, nil
	}

	if isTerminal(cmd.OutOrStdout()) {
		return synthase.FormatTable, nil
	}

	return synthase.FormatJSON, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// writeOutput encodes the reported synthases. Partial results are written
// before the run error is returned.
func writeOutput(w io.Writer, out runner.Output, format synthase.Format) error {
	err := synthase.Encode(w, out.Synthases, format)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if out.Error != nil {
		return fmt.Errorf("classify: %w", out.Error)
	}

	return nil
}
