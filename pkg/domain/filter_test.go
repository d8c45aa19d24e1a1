package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/pkg/domain"
)

func TestDedupeGlobal(t *testing.T) {
	t.Parallel()

	ks := domain.New("KS", "PKS_KS", 10, 400)
	ksShort := domain.New("KS", "KS_like", 20, 390)
	at := domain.New("AT", "PKS_AT", 500, 800)
	atOverlap := domain.New("DH", "PKS_DH", 510, 790)

	input := []*domain.Hit{at, ksShort, atOverlap, ks}
	got := domain.DedupeGlobal(input, domain.DefaultThreshold)

	assert.Equal(t, []*domain.Hit{ks, at}, got)
	assert.Equal(t, []*domain.Hit{at, ksShort, atOverlap, ks}, input, "input order must be preserved")
}

func TestDedupeByLabel(t *testing.T) {
	t.Parallel()

	ks := domain.New("KS", "PKS_KS", 10, 400)
	ksShort := domain.New("KS", "KS_like", 20, 390)
	dh := domain.New("DH", "PKS_DH", 15, 395)
	at := domain.New("AT", "PKS_AT", 500, 800)

	got := domain.DedupeByLabel([]*domain.Hit{at, ksShort, dh, ks}, domain.DefaultThreshold)

	assert.Equal(t, []*domain.Hit{ks, dh, at}, got)
}

func TestDedupeByLabel_SameStartOrderedByLabel(t *testing.T) {
	t.Parallel()

	ks := domain.New("KS", "", 1, 100)
	at := domain.New("AT", "", 1, 100)

	got := domain.DedupeByLabel([]*domain.Hit{ks, at}, domain.DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"AT", "KS"}, domain.Labels(got))
}

func TestDedupe_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, domain.DedupeGlobal(nil, domain.DefaultThreshold))
	assert.Empty(t, domain.DedupeByLabel(nil, domain.DefaultThreshold))
}

func TestMergeChildren(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		hits []*domain.Hit
		want []domain.Hit
	}{
		"contained child": {
			hits: []*domain.Hit{
				domain.New("A", "", 1, 100),
				domain.New("C", "Condensation", 101, 300),
				domain.New("E", "NRPS-para261", 180, 300),
				domain.New("T", "PP-binding", 310, 380),
			},
			want: []domain.Hit{
				{Label: "A", Start: 1, End: 100},
				{Label: "E", Family: "Condensation", Start: 101, End: 300},
				{Label: "T", Family: "PP-binding", Start: 310, End: 380},
			},
		},
		"insufficient overlap": {
			hits: []*domain.Hit{
				domain.New("C", "", 1, 200),
				domain.New("E", "", 180, 205),
			},
			want: []domain.Hit{
				{Label: "C", Start: 1, End: 200},
				{Label: "E", Start: 180, End: 205},
			},
		},
		"wrong order": {
			hits: []*domain.Hit{
				domain.New("E", "", 1, 200),
				domain.New("C", "", 1, 200),
			},
			want: []domain.Hit{
				{Label: "E", Start: 1, End: 200},
				{Label: "C", Start: 1, End: 200},
			},
		},
		"consecutive parents": {
			hits: []*domain.Hit{
				domain.New("C", "", 1, 200),
				domain.New("E", "", 20, 200),
				domain.New("C", "", 300, 500),
				domain.New("E", "", 310, 500),
			},
			want: []domain.Hit{
				{Label: "E", Start: 1, End: 200},
				{Label: "E", Start: 300, End: 500},
			},
		},
		"empty": {
			hits: nil,
			want: nil,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := domain.MergeChildren(tc.hits, "C", "E", domain.DefaultThreshold)
			require.Len(t, got, len(tc.want))
			for i, h := range got {
				assert.Equal(t, tc.want[i], *h)
			}
		})
	}
}

func TestMergeChildren_RetestsSameIndex(t *testing.T) {
	t.Parallel()

	// With equal parent and child labels every merge leaves a new parent at
	// the same index, which must be tested against the next hit.
	hs := []*domain.Hit{
		domain.New("X", "first", 1, 200),
		domain.New("X", "second", 10, 200),
		domain.New("X", "third", 20, 200),
		domain.New("Y", "", 300, 400),
	}

	got := domain.MergeChildren(hs, "X", "X", domain.DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Hit{Label: "X", Family: "first", Start: 1, End: 200}, *got[0])
	assert.Equal(t, domain.Hit{Label: "Y", Start: 300, End: 400}, *got[1])
}
