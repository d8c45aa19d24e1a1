package rule_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/rule"
)

func hits(labels ...string) []*domain.Hit {
	out := make([]*domain.Hit, len(labels))
	for i, label := range labels {
		out[i] = domain.New(label, label+"_family", i*100+1, i*100+90)
	}

	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		evaluator string
		domains   []string
		wantErr   bool
	}{
		"valid rule": {
			evaluator: "0 and 1",
			domains:   []string{"KS", "AT"},
		},
		"no domains": {
			evaluator: "True",
		},
		"out of range": {
			evaluator: "0 and 1",
			domains:   []string{"KS"},
			wantErr:   true,
		},
		"malformed": {
			evaluator: "0 and and 1",
			domains:   []string{"KS", "AT"},
			wantErr:   true,
		},
		"empty evaluator": {
			evaluator: "",
			domains:   []string{"KS", "AT"},
			wantErr:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := rule.New("test", tt.evaluator, rule.WithDomains(tt.domains...))
			if tt.wantErr {
				require.ErrorIs(t, err, rule.ErrEvaluation)
				assert.Nil(t, r)
				assert.Contains(t, err.Error(), `rule "test"`)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "test", r.Name)
			assert.Equal(t, tt.evaluator, r.Evaluator)
		})
	}
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		rule.MustNew("PKS", "0", rule.WithDomains("KS"))
	})
	assert.Panics(t, func() {
		rule.MustNew("PKS", "0 and 1", rule.WithDomains("KS"))
	})
}

func TestRule_Compile(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{Name: "PKS", Domains: []string{"KS"}, Evaluator: "0"}
	require.NoError(t, r.Compile())
	require.NoError(t, r.Compile())

	bad := &rule.Rule{Name: "bad", Evaluator: "0"}
	err := bad.Compile()
	require.ErrorIs(t, err, rule.ErrIndexOutOfRange)
	assert.Contains(t, err.Error(), `rule "bad"`)

	var evalErr *rule.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "bad", evalErr.Rule)
	assert.Equal(t, "0", evalErr.Expression)

	// The result of the first compilation is kept.
	require.ErrorIs(t, bad.Compile(), rule.ErrIndexOutOfRange)
	_, err = bad.SatisfiedBy(hits("KS"))
	require.ErrorIs(t, err, rule.ErrEvaluation)
}

func TestRule_SatisfiedBy(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		rule *rule.Rule
		hits []*domain.Hit
		want bool
	}{
		"only KS present": {
			rule: rule.MustNew("PKS", "0 and 1", rule.WithDomains("KS", "AT")),
			hits: hits("KS"),
			want: false,
		},
		"KS and AT present": {
			rule: rule.MustNew("PKS", "0 and 1", rule.WithDomains("KS", "AT")),
			hits: hits("KS", "DH", "AT"),
			want: true,
		},
		"two KS required, one present": {
			rule: rule.MustNew("multi", "0 and 1", rule.WithDomains("KS", "KS")),
			hits: hits("KS", "AT"),
			want: false,
		},
		"two KS required, two present": {
			rule: rule.MustNew("multi", "0 and 1", rule.WithDomains("KS", "KS")),
			hits: hits("KS", "AT", "KS"),
			want: true,
		},
		"negated requirement": {
			rule: rule.MustNew("HR-PKS", "0 and not 1", rule.WithDomains("KS", "ER")),
			hits: hits("KS", "AT", "ER"),
			want: false,
		},
		"zero domains is vacuous": {
			rule: rule.MustNew("any", "True", rule.WithDomains()),
			hits: nil,
			want: true,
		},
		"empty hits": {
			rule: rule.MustNew("PKS", "0", rule.WithDomains("KS")),
			hits: nil,
			want: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.rule.SatisfiedBy(tc.hits)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRule_Conditions(t *testing.T) {
	t.Parallel()

	t.Run("vector preserves duplicates", func(t *testing.T) {
		t.Parallel()

		r := rule.MustNew("r", "0", rule.WithDomains("KS", "AT", "KS", "KS"))
		assert.Equal(t, []bool{true, true, true, false}, r.Conditions(hits("KS", "AT", "KS")))
	})

	t.Run("filter applies to every requirement of a label", func(t *testing.T) {
		t.Parallel()

		// The first requirement uses the PKS_KS hit and the KS_like hit is
		// rejected for the second.
		r := rule.MustNew("r", "0 and 1",
			rule.WithDomains("KS", "KS"),
			rule.WithFilter("KS", "PKS_KS"),
		)

		hs := []*domain.Hit{
			domain.New("KS", "PKS_KS", 1, 100),
			domain.New("KS", "KS_like", 200, 300),
		}

		assert.Equal(t, []bool{true, false}, r.Conditions(hs))
	})

	t.Run("family filter", func(t *testing.T) {
		t.Parallel()

		r := rule.MustNew("r", "0 and 1",
			rule.WithDomains("KS", "AT"),
			rule.WithFilter("KS", "PKS_KS", "PKS"),
		)

		hs := []*domain.Hit{
			domain.New("KS", "CHS_like", 1, 100),
			domain.New("KS", "PKS", 150, 250),
			domain.New("AT", "anything", 300, 400),
		}

		assert.Equal(t, []bool{true, true}, r.Conditions(hs))
		assert.False(t, r.ValidFamily(hs[0]))
		assert.True(t, r.ValidFamily(hs[1]))
		assert.True(t, r.ValidFamily(hs[2]))
	})
}

func TestRule_SatisfiedBy_DoesNotMutate(t *testing.T) {
	t.Parallel()

	r := rule.MustNew("r", "0 and 1 and 2",
		rule.WithDomains("KS", "AT", "ACP"),
		rule.WithRename("ACP", "T"),
	)

	hs := hits("KS", "AT", "ACP", "KS")
	before := domain.Clone(hs)

	_, err := r.SatisfiedBy(hs)
	require.NoError(t, err)

	for i := range hs {
		assert.Equal(t, *before[i], *hs[i])
	}
}

func TestRule_RenameDomains(t *testing.T) {
	t.Parallel()

	r := rule.MustNew("NRPS", "0", rule.WithDomains("A"),
		rule.WithRename("ACP", "T"),
		rule.WithRename("T", "X"),
	)

	hs := hits("A", "ACP", "C", "ACP", "T")

	assert.Equal(t, 3, r.RenameDomains(hs))
	assert.Equal(t, []string{"A", "T", "C", "T", "X"}, domain.Labels(hs))

	noop := rule.MustNew("PKS", "0", rule.WithDomains("KS"))
	assert.Zero(t, noop.RenameDomains(hs))
}

func TestRule_ConcurrentUse(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{Name: "PKS", Domains: []string{"KS", "AT"}, Evaluator: "0 and 1"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := r.SatisfiedBy(hits("KS", "AT"))
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}

	wg.Wait()
}
