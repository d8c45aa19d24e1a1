package domain

import (
	"slices"
)

// DedupeGlobal groups all hits regardless of label and keeps one
// [Representative] per group, ordered by start position.
//
// The input slice is not modified.
func DedupeGlobal(hits []*Hit, threshold float64) []*Hit {
	sorted := slices.Clone(hits)

	filtered := make([]*Hit, 0, len(sorted))
	for _, group := range Group(sorted, threshold) {
		filtered = append(filtered, Representative(group))
	}

	SortByStart(filtered)

	return filtered
}

// DedupeByLabel groups hits within each label independently, so hits of
// different labels are never merged even when they overlap. It keeps one
// [Representative] per group and orders the result by start position. Hits
// sharing a start position are ordered by label.
//
// The input slice is not modified.
func DedupeByLabel(hits []*Hit, threshold float64) []*Hit {
	byLabel := make(map[string][]*Hit)
	for _, h := range hits {
		byLabel[h.Label] = append(byLabel[h.Label], h)
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}

	slices.Sort(labels)

	filtered := make([]*Hit, 0, len(hits))
	for _, label := range labels {
		for _, group := range Group(byLabel[label], threshold) {
			filtered = append(filtered, Representative(group))
		}
	}

	SortByStart(filtered)

	return filtered
}

// MergeChildren folds a child hit into the parent hit immediately before it.
//
// Adjacent pairs are scanned in order. When hits[i-1] has the parent label,
// hits[i] has the child label and the two overlap, hits[i-1] takes the
// child label and hits[i] is removed. The same index is then tested again,
// so runs of overlapping children collapse into a single hit.
//
// The returned slice shares its backing array with hits.
func MergeChildren(hits []*Hit, parent, child string, threshold float64) []*Hit {
	for i := 1; i < len(hits); {
		prev, cur := hits[i-1], hits[i]
		if prev.Label == parent && cur.Label == child && Overlaps(prev, cur, threshold) {
			prev.Label = child
			hits = slices.Delete(hits, i, i+1)

			continue
		}

		i++
	}

	return hits
}
