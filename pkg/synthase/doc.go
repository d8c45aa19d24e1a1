// Package synthase classifies synthase proteins from their conserved domain
// hits.
//
// A [Synthase] is a query sequence with its domain hits. Hits are first
// filtered to a non-redundant set ([Synthase.FilterSameLabel] or
// [Synthase.FilterOverlapping]), then classified against a
// [rulegraph.Graph] with [Classify]. A [Relabeler] finally rewrites
// carrier and reductase labels into the conventions of the
// classification's lineage.
package synthase
