package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/macropower/synthaser/pkg/rulegraph"
)

const rulesExamples = `  # Show the active rule graph:
  synthaser rules show

  # Print the built-in rules as a starting point for a custom rule file:
  synthaser rules show -o yaml > rules.yaml

  # Check a rule file:
  synthaser rules validate ./rules.yaml`

var (
	ruleNameStyle = lipgloss.NewStyle().Bold(true)
	ruleDescStyle = lipgloss.NewStyle().Faint(true)
)

type RulesArgs struct {
	*RootArgs

	Rules  string
	Output string
}

func NewRulesCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &RulesArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:     "rules",
		Short:   "Inspect and validate rule files",
		Example: rulesExamples,
		Args:    cobra.NoArgs,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active rule graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showRules(cmd, ra)
		},
	}
	show.Flags().StringVar(&ra.Rules, "rules", "", "Path to a rule file, defaults to the configured rules")
	show.Flags().StringVarP(&ra.Output, "output", "o", "tree", "Output format, one of: [tree yaml json]")

	err := show.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"tree", "yaml", "json"}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	validate := &cobra.Command{
		Use:   "validate path...",
		Short: "Check that rule files parse and reference only defined rules",
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return []cobra.Completion{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRules(cmd, args)
		},
	}

	cmd.AddCommand(show, validate)

	bindEnvVars(show)

	return cmd
}

func showRules(cmd *cobra.Command, ra *RulesArgs) error {
	path := ra.Rules
	if !cmd.Flags().Changed("rules") {
		cfg, _, err := loadConfig(ra.ConfigPath)
		if err != nil {
			return err
		}

		path = cfg.Runner.Rules
	}

	g, err := rulegraph.Load(path)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	switch ra.Output {
	case "yaml":
		b, err := g.Marshal()
		if err != nil {
			return err //nolint:wrapcheck // Already wrapped.
		}

		mustN(cmd.OutOrStdout().Write(b))

	case "json":
		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}

		mustN(fmt.Fprintln(cmd.OutOrStdout(), string(b)))

	case "tree":
		mustN(fmt.Fprintln(cmd.OutOrStdout(), ruleTree(g).String()))

	default:
		return fmt.Errorf("invalid argument %q for \"--output\" flag", ra.Output)
	}

	return nil
}

// ruleTree renders the graph entries, labeling each rule with its required
// domains and evaluator.
func ruleTree(g *rulegraph.Graph) *tree.Tree {
	root := tree.Root("rules").Enumerator(tree.RoundedEnumerator)
	addEntries(root, g, g.Entries)

	return root
}

func addEntries(t *tree.Tree, g *rulegraph.Graph, entries []rulegraph.Entry) {
	for _, e := range entries {
		label := ruleNameStyle.Render(e.Name)
		if r, ok := g.Rule(e.Name); ok && len(r.Domains) > 0 {
			label += " " + ruleDescStyle.Render(
				fmt.Sprintf("[%s] %s", strings.Join(r.Domains, ", "), r.Evaluator),
			)
		}

		if e.IsLeaf() {
			t.Child(label)

			continue
		}

		child := tree.Root(label).Enumerator(tree.RoundedEnumerator)
		addEntries(child, g, e.Children)
		t.Child(child)
	}
}

func validateRules(cmd *cobra.Command, paths []string) error {
	for _, path := range paths {
		g, err := rulegraph.Load(path)
		if err != nil {
			return fmt.Errorf("invalid rules: %w", err)
		}

		slog.Debug("validated rules", slog.String("path", path), slog.Int("rules", len(g.Rules)))
		mustN(fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules, %d root entries\n", path, len(g.Rules), len(g.Entries)))
	}

	return nil
}
