package cli

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/synthaser/pkg/fasta"
	"github.com/macropower/synthaser/pkg/runner"
	"github.com/macropower/synthaser/pkg/synthase"
)

const extractExamples = `  # Print every domain sequence as FASTA:
  synthaser extract ./hits.yaml

  # Write one FASTA file per domain label:
  synthaser extract ./hits.yaml --output-dir ./domains

  # Only extract domains of non-reducing PKS:
  synthaser extract ./hits.yaml --where '"NR-PKS" in classification'`

type ExtractArgs struct {
	*RootArgs
	ConfigArgs

	OutputDir string
	Paths     []string
	Wrap      int
}

func NewExtractArgs(rootArgs *RootArgs) *ExtractArgs {
	return &ExtractArgs{
		RootArgs: rootArgs,
	}
}

func (ea *ExtractArgs) AddFlags(cmd *cobra.Command) {
	ea.ConfigArgs.AddFlags(cmd.Flags())

	cmd.Flags().StringVar(&ea.OutputDir, "output-dir", "", "Write one <label>.faa file per domain label to this directory")
	cmd.Flags().IntVar(&ea.Wrap, "wrap", fasta.DefaultWrap, "Residues per sequence line, 0 disables wrapping")

	err := cmd.MarkFlagDirname("output-dir")
	if err != nil {
		panic(fmt.Errorf("mark output-dir flag: %w", err))
	}
}

func NewExtractCmd(ea *ExtractArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract path...",
		Short:   "Extract the sequence of each domain hit as FASTA",
		Example: extractExamples,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ea.Paths = args

			return extract(cmd, ea)
		},
	}
	ea.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func extract(cmd *cobra.Command, ea *ExtractArgs) error {
	cfg, _, err := loadConfig(ea.ConfigPath)
	if err != nil {
		return err
	}

	ea.Apply(cmd.Flags(), cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ctx := commandContext(cmd)

	r, err := runner.NewContext(ctx, ea.Paths, runner.WithConfig(cfg.Runner))
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer r.Close()

	out := r.RunContext(ctx)
	if out.Error != nil {
		slog.Warn("classify", slog.Any("err", out.Error))
	}

	synthases := make([]*synthase.Synthase, 0, len(out.Synthases))
	for _, s := range out.Synthases {
		if s.Sequence == "" || len(s.Domains) == 0 {
			slog.Warn("skip synthase without sequence or domains", slog.String("header", s.Header))

			continue
		}

		synthases = append(synthases, s)
	}

	records, err := synthase.ExtractAll(synthases)
	if err != nil {
		return fmt.Errorf("extract domains: %w", err)
	}

	labels := slices.Sorted(maps.Keys(records))

	if ea.OutputDir == "" {
		for _, label := range labels {
			err := fasta.Write(cmd.OutOrStdout(), records[label], ea.Wrap)
			if err != nil {
				return fmt.Errorf("write %s: %w", label, err)
			}
		}

		return nil
	}

	err = os.MkdirAll(ea.OutputDir, 0o750)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, label := range labels {
		path := filepath.Join(ea.OutputDir, fileName(label)+".faa")

		err := writeFASTAFile(path, records[label], ea.Wrap)
		if err != nil {
			return err
		}

		slog.Info("wrote domains",
			slog.String("label", label),
			slog.Int("count", len(records[label])),
			slog.String("path", path),
		)
	}

	return nil
}

func writeFASTAFile(path string, records []fasta.Record, wrap int) error {
	f, err := os.Create(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	err = fasta.Write(f, records, wrap)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

func fileName(label string) string {
	return strings.NewReplacer("/", "_", string(filepath.Separator), "_", " ", "_").Replace(label)
}
