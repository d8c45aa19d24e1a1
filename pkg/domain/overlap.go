package domain

import (
	"cmp"
	"slices"
)

// DefaultThreshold is the fraction of either hit's span that must be covered
// for two hits to overlap.
const DefaultThreshold = 0.9

// Overlaps reports whether the overlap between a and b covers at least
// threshold of the span of either hit.
//
// The overlap length is min(end) - max(start), clamped at zero. Rule
// thresholds were tuned against this exact formula, so it is not adjusted
// for inclusive coordinates.
func Overlaps(a, b *Hit, threshold float64) bool {
	overlap := max(0, min(a.End, b.End)-max(a.Start, b.Start))

	return float64(overlap) >= threshold*float64(a.Span()) ||
		float64(overlap) >= threshold*float64(b.Span())
}

// SortByStart stably sorts hits by start position.
func SortByStart(hits []*Hit) {
	slices.SortStableFunc(hits, func(a, b *Hit) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

// Group sorts hits by start position in place and partitions them into
// groups of overlapping hits.
//
// Each group is anchored on its first hit. Following hits join the group
// while they overlap the anchor; the first hit that does not closes the
// group and becomes the anchor of the next one. Membership is never tested
// against later members, so a chain of pairwise overlaps does not merge.
func Group(hits []*Hit, threshold float64) [][]*Hit {
	SortByStart(hits)

	var groups [][]*Hit

	for i := 0; i < len(hits); {
		anchor := hits[i]

		j := i + 1
		for j < len(hits) && Overlaps(anchor, hits[j], threshold) {
			j++
		}

		groups = append(groups, hits[i:j:j])
		i = j
	}

	return groups
}

// Representative returns the member of group with the greatest span. Ties
// resolve to the earliest member. It returns nil for an empty group.
func Representative(group []*Hit) *Hit {
	var best *Hit
	for _, h := range group {
		if best == nil || h.Span() > best.Span() {
			best = h
		}
	}

	return best
}
