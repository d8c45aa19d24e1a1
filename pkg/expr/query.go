package expr

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/macropower/synthaser/pkg/synthase"
)

// ErrNotBool indicates a query that does not evaluate to a bool.
var ErrNotBool = errors.New("expression must evaluate to a bool")

// Query is a compiled CEL expression selecting synthases. It is safe for
// concurrent use.
type Query struct {
	program    cel.Program
	expression string
}

// NewQuery compiles expression in the [DefaultEnvironment].
func NewQuery(expression string) (*Query, error) {
	return DefaultEnvironment.NewQuery(expression)
}

// NewQuery compiles expression in e.
func (e *Environment) NewQuery(expression string) (*Query, error) {
	program, err := e.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expression, err)
	}

	return &Query{program: program, expression: expression}, nil
}

func (q *Query) String() string {
	return q.expression
}

// Match reports whether s satisfies the query.
func (q *Query) Match(s *synthase.Synthase) (bool, error) {
	out, _, err := q.program.Eval(Variables(s))
	if err != nil {
		return false, fmt.Errorf("evaluate %q for %s: %w", q.expression, s.Header, err)
	}

	match, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q for %s: %w: got %T", q.expression, s.Header, ErrNotBool, out.Value())
	}

	return match, nil
}

// Filter returns the synthases that satisfy the query, in order.
func (q *Query) Filter(synthases []*synthase.Synthase) ([]*synthase.Synthase, error) {
	out := make([]*synthase.Synthase, 0, len(synthases))

	for _, s := range synthases {
		ok, err := q.Match(s)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, s)
		}
	}

	return out, nil
}

// Variables returns the CEL activation for s.
func Variables(s *synthase.Synthase) map[string]any {
	hits := make([]any, len(s.Domains))
	for i, h := range s.Domains {
		hits[i] = map[string]any{
			"label":  h.Label,
			"family": h.Family,
			"start":  h.Start,
			"end":    h.End,
		}
	}

	classification := s.Classification
	if classification == nil {
		classification = []string{}
	}

	return map[string]any{
		"header":         s.Header,
		"length":         s.Length(),
		"classification": ConvertToCELValue(classification),
		"kind":           s.Type(),
		"architecture":   s.Architecture(),
		"domains":        ConvertToCELValue(s.Labels()),
		"hits":           ConvertToCELValue(hits),
	}
}
