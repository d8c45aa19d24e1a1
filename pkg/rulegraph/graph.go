package rulegraph

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/rule"
	"github.com/macropower/synthaser/pkg/yaml"
)

var (
	// ErrRuleNotFound indicates a graph entry names an undefined rule.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrDuplicateRule indicates two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule")
)

// LookupError is returned when a graph entry names an undefined rule.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %q", ErrRuleNotFound, e.Name)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrRuleNotFound
}

// Graph is a set of rules and the ordered entries that determine
// classification priority and hierarchy.
//
// A Graph is read-only after construction and safe for concurrent use.
type Graph struct {
	rules   map[string]*rule.Rule
	Rules   []*rule.Rule `json:"rules"`
	Entries []Entry      `json:"graph"`
}

// New creates a new [Graph] and validates it with [Graph.Validate].
func New(rules []*rule.Rule, entries []Entry) (*Graph, error) {
	g := &Graph{
		Rules:   rules,
		Entries: entries,
		rules:   make(map[string]*rule.Rule, len(rules)),
	}

	err := g.Validate()
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Validate checks that rule names are unique, every condition compiles and
// every entry names a defined rule. Errors are [*yaml.Error] values
// carrying the path of the offending field.
func (g *Graph) Validate() error {
	g.rules = make(map[string]*rule.Rule, len(g.Rules))

	for i, r := range g.Rules {
		if r == nil || r.Name == "" {
			return yaml.NewError(errors.New("rule name is required"),
				yaml.WithPath(yaml.BuildPath("rules", i)),
			)
		}

		if _, ok := g.rules[r.Name]; ok {
			return yaml.NewError(fmt.Errorf("%w: %q", ErrDuplicateRule, r.Name),
				yaml.WithPath(yaml.BuildPath("rules", i, "name")),
			)
		}

		err := r.Compile()
		if err != nil {
			return yaml.NewError(err,
				yaml.WithPath(yaml.BuildPath("rules", i, "evaluator")),
			)
		}

		g.rules[r.Name] = r
	}

	return g.validateEntries(g.Entries, []any{"graph"})
}

func (g *Graph) validateEntries(entries []Entry, parent []any) error {
	for i, e := range entries {
		path := append(slices.Clip(parent), i)

		if _, ok := g.rules[e.Name]; !ok {
			return yaml.NewError(&LookupError{Name: e.Name}, yaml.WithPath(yaml.BuildPath(path...)))
		}

		if e.IsLeaf() {
			continue
		}

		err := g.validateEntries(e.Children, append(path, e.Name))
		if err != nil {
			return err
		}
	}

	return nil
}

// Rule returns the named rule.
func (g *Graph) Rule(name string) (*rule.Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// Classify walks the graph against hits and returns the classification
// path: the names of the satisfied entries, from most general to most
// specific. An unclassified subject gets an empty, non-nil path.
//
// Satisfied rules apply their renames to hits, so later rules in the walk
// see the renamed labels. Rule definitions are never modified.
func (g *Graph) Classify(hits []*domain.Hit) ([]string, error) {
	return g.classify(g.Entries, hits, []string{})
}

func (g *Graph) classify(entries []Entry, hits []*domain.Hit, path []string) ([]string, error) {
	for _, e := range entries {
		r, ok := g.rules[e.Name]
		if !ok {
			return nil, &LookupError{Name: e.Name}
		}

		ok, err := r.SatisfiedBy(hits)
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}

		if !ok {
			continue
		}

		r.RenameDomains(hits)

		path = append(path, e.Name)

		slog.Debug("matched rule",
			slog.String("rule", e.Name),
			slog.Int("depth", len(path)),
		)

		if !e.IsLeaf() {
			return g.classify(e.Children, hits, path)
		}

		return path, nil
	}

	return path, nil
}
