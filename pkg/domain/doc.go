// Package domain models conserved domain hits on a protein sequence and
// resolves overlapping hits into a non-redundant set.
//
// Hits are grouped with an anchor-rooted, non-transitive clustering: every
// member of a group overlaps the first hit of that group, but not
// necessarily each other. Each group is then reduced to its longest member.
package domain
