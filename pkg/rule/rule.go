package rule

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/macropower/synthaser/pkg/domain"
)

// Rule is a named classification test over a subject's domain hits.
//
// Domains lists the required domain labels in order; repeated labels
// require that many distinct hits. Evaluator is a boolean condition over
// the positions of Domains, e.g. "0 and 1 and (2 or not 3)".
//
// A rule compiles its evaluator once and is safe for concurrent use.
// Rules are never mutated by evaluation.
type Rule struct {
	condition  Condition
	compileErr error
	once       sync.Once

	// Rename maps domain labels to replacement labels. It is applied to
	// every hit of a subject that satisfies the rule.
	Rename map[string]string `json:"rename,omitempty" jsonschema:"title=Rename"`
	// Filters restricts a domain label to a set of accepted families. Labels
	// without an entry accept any family.
	Filters map[string][]string `json:"filters,omitempty" jsonschema:"title=Family Filters"`
	// Name identifies the rule in the rule graph and is the classification
	// label given to satisfying subjects.
	Name string `json:"name" jsonschema:"title=Name"`
	// Evaluator is the boolean condition over positions of Domains.
	Evaluator string `json:"evaluator" jsonschema:"title=Evaluator"`
	// Domains lists the required domain labels.
	Domains []string `json:"domains,omitempty" jsonschema:"title=Required Domains"`
}

// Opt configures a [Rule].
type Opt func(*Rule)

// WithDomains sets the required domain labels.
func WithDomains(domains ...string) Opt {
	return func(r *Rule) {
		r.Domains = domains
	}
}

// WithFilter restricts label to the given families.
func WithFilter(label string, families ...string) Opt {
	return func(r *Rule) {
		if r.Filters == nil {
			r.Filters = make(map[string][]string)
		}

		r.Filters[label] = families
	}
}

// WithRename renames hits labeled from to to when the rule is satisfied.
func WithRename(from, to string) Opt {
	return func(r *Rule) {
		if r.Rename == nil {
			r.Rename = make(map[string]string)
		}

		r.Rename[from] = to
	}
}

// New creates a new compiled [Rule].
func New(name, evaluator string, opts ...Opt) (*Rule, error) {
	r := &Rule{
		Name:      name,
		Evaluator: evaluator,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.Compile(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNew creates a new [Rule] and panics if there's an error.
func MustNew(name, evaluator string, opts ...Opt) *Rule {
	r, err := New(name, evaluator, opts...)
	if err != nil {
		panic(err)
	}

	return r
}

// Compile parses the rule's evaluator. Only the first call parses; later
// calls return the same result.
func (r *Rule) Compile() error {
	_, err := r.compiled()
	return err
}

// Condition returns the compiled condition.
//
//nolint:ireturn // Condition is a closed sum type.
func (r *Rule) Condition() (Condition, error) {
	return r.compiled()
}

//nolint:ireturn // Condition is a closed sum type.
func (r *Rule) compiled() (Condition, error) {
	r.once.Do(func() {
		c, err := ParseCondition(r.Evaluator, len(r.Domains))

		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			evalErr.Rule = r.Name
		}

		r.condition, r.compileErr = c, err
	})

	return r.condition, r.compileErr
}

// ValidFamily reports whether the family of h is accepted for its label.
func (r *Rule) ValidFamily(h *domain.Hit) bool {
	families, ok := r.Filters[h.Label]
	if !ok {
		return true
	}

	return slices.Contains(families, h.Family)
}

// Conditions matches each required domain against hits.
//
// Requirements are matched in order. Each takes the first hit, in the order
// given, that has not been used by an earlier requirement, has the required
// label and an accepted family. There is no backtracking: a hit used by one
// requirement is unavailable to later ones even if another assignment would
// satisfy more of them.
func (r *Rule) Conditions(hits []*domain.Hit) []bool {
	used := make([]bool, len(hits))
	conditions := make([]bool, len(r.Domains))

	for i, label := range r.Domains {
		for j, h := range hits {
			if used[j] || h.Label != label || !r.ValidFamily(h) {
				continue
			}

			used[j] = true
			conditions[i] = true

			break
		}
	}

	return conditions
}

// SatisfiedBy evaluates the rule against hits. It does not modify hits.
func (r *Rule) SatisfiedBy(hits []*domain.Hit) (bool, error) {
	c, err := r.compiled()
	if err != nil {
		return false, err
	}

	conditions := r.Conditions(hits)
	ok := c.Eval(conditions)

	slog.Debug("evaluated rule",
		slog.String("rule", r.Name),
		slog.String("architecture", domain.Architecture(hits)),
		slog.Any("conditions", conditions),
		slog.Bool("satisfied", ok),
	)

	return ok, nil
}

// RenameDomains applies the rule's Rename map to every hit, returning the
// number of renamed hits.
func (r *Rule) RenameDomains(hits []*domain.Hit) int {
	if len(r.Rename) == 0 {
		return 0
	}

	renamed := 0
	for _, h := range hits {
		if to, ok := r.Rename[h.Label]; ok {
			h.Label = to
			renamed++
		}
	}

	if renamed > 0 {
		slog.Debug("renamed domains",
			slog.String("rule", r.Name),
			slog.Int("count", renamed),
		)
	}

	return renamed
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %v -> %s", r.Name, r.Domains, r.Evaluator)
}
