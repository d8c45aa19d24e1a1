package expr_test

import (
	"math"
	"testing"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/traits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/expr"
	"github.com/macropower/synthaser/pkg/synthase"
)

func testSynthase() *synthase.Synthase {
	s := synthase.New("seq1", "MKTAYIAKQRQISFVKSHFSRQ",
		domain.New("KS", "PKS_KS", 1, 5),
		domain.New("AT", "PKS_AT", 6, 10),
		domain.New("KS", "PKS_KS", 11, 15),
		domain.New("ACP", "PP-binding", 16, 20),
	)
	s.Classification = []string{"PKS", "NR-PKS"}

	return s
}

func TestQuery_Match(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		want       bool
	}{
		"kind": {
			expression: `kind == "PKS"`,
			want:       true,
		},
		"classification": {
			expression: `"NR-PKS" in classification`,
			want:       true,
		},
		"architecture": {
			expression: `architecture.startsWith("KS-AT")`,
			want:       true,
		},
		"length": {
			expression: `length > 100`,
			want:       false,
		},
		"header": {
			expression: `header.matches("^seq[0-9]+$")`,
			want:       true,
		},
		"hasAll single": {
			expression: `domains.hasAll("ACP")`,
			want:       true,
		},
		"hasAll many": {
			expression: `domains.hasAll("KS", "AT", "ACP")`,
			want:       true,
		},
		"hasAll missing": {
			expression: `domains.hasAll("KS", "DH")`,
			want:       false,
		},
		"countOf": {
			expression: `countOf(domains, "KS") == 2`,
			want:       true,
		},
		"hits": {
			expression: `hits.exists(h, h.family == "PP-binding" && h.start == 16)`,
			want:       true,
		},
		"hits all": {
			expression: `hits.all(h, h.end - h.start == 4)`,
			want:       true,
		},
		"unclassified": {
			expression: `size(classification) == 0`,
			want:       false,
		},
		"ext strings": {
			expression: `architecture.split("-").size() == 4`,
			want:       true,
		},
	}

	s := testSynthase()

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			q, err := expr.NewQuery(tc.expression)
			require.NoError(t, err)

			got, err := q.Match(s)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewQuery_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		wantErr    error
	}{
		"syntax": {
			expression: `kind ==`,
		},
		"undeclared": {
			expression: `subtype == "PKS"`,
		},
		"not bool": {
			expression: `header`,
			wantErr:    expr.ErrNotBool,
		},
		"hasAll without args": {
			expression: `domains.hasAll()`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := expr.NewQuery(tc.expression)
			require.Error(t, err)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestQuery_Filter(t *testing.T) {
	t.Parallel()

	pks := testSynthase()
	nrps := synthase.New("seq2", "", domain.New("A", "AMP-binding", 1, 10))
	nrps.Classification = []string{"NRPS"}
	none := synthase.New("seq3", "")

	q, err := expr.NewQuery(`kind != ""`)
	require.NoError(t, err)
	assert.Equal(t, "kind != \"\"", q.String())

	got, err := q.Filter([]*synthase.Synthase{pks, nrps, none})
	require.NoError(t, err)
	assert.Equal(t, []*synthase.Synthase{pks, nrps}, got)
}

func TestQuery_EvalError(t *testing.T) {
	t.Parallel()

	q, err := expr.NewQuery(`classification[0] == "PKS"`)
	require.NoError(t, err)

	_, err = q.Match(synthase.New("seq", ""))
	require.ErrorContains(t, err, "seq")
}

func TestConvertToCELValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input  any
		want   any
		isNull bool
	}{
		"nil": {
			input:  nil,
			isNull: true,
		},
		"bool": {
			input: true,
			want:  true,
		},
		"int": {
			input: 42,
			want:  int64(42),
		},
		"int64": {
			input: int64(42),
			want:  int64(42),
		},
		"uint64": {
			input: uint64(42),
			want:  int64(42),
		},
		"uint64 overflow": {
			input: uint64(math.MaxUint64),
			want:  float64(math.MaxUint64),
		},
		"float64": {
			input: 1.5,
			want:  1.5,
		},
		"string": {
			input: "KS",
			want:  "KS",
		},
		"unsupported": {
			input:  struct{}{},
			isNull: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := expr.ConvertToCELValue(tc.input)
			if tc.isNull {
				assert.Equal(t, types.NullValue, got)
				return
			}

			assert.Equal(t, tc.want, got.Value())
		})
	}
}

func TestConvertToCELValue_Collections(t *testing.T) {
	t.Parallel()

	list, ok := expr.ConvertToCELValue([]any{"KS", 1}).(traits.Lister)
	require.True(t, ok)
	assert.Equal(t, types.Int(2), list.Size())

	m, ok := expr.ConvertToCELValue(map[string]any{"label": "KS"}).(traits.Mapper)
	require.True(t, ok)

	v, found := m.Find(types.String("label"))
	require.True(t, found)
	assert.Equal(t, types.String("KS"), v)
}
