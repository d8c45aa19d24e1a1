// Package rulegraph classifies subjects by walking an ordered, nested graph
// of rules.
//
// A rule file has two top-level fields. "rules" lists the rule definitions
// (see [rule.Rule]); "graph" lists the entries to evaluate, in priority
// order. A leaf entry is a bare rule name. A node entry is a single-key
// mapping from a rule name to its child entries:
//
//	graph:
//	  - Hybrid
//	  - PKS:
//	      - HR-PKS
//	      - PR-PKS
//	      - NR-PKS
//	  - NRPS
//
// Classification is depth-first and first-match-wins: the first satisfied
// entry at each level is appended to the classification path, its children
// (if any) are evaluated, and its remaining siblings are skipped.
package rulegraph
