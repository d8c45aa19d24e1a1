package synthase

import (
	"log/slog"
	"strings"

	"github.com/macropower/synthaser/pkg/domain"
)

// DefaultRelabeler applies NRPS naming conventions to NRPS and hybrid
// PKS-NRPS synthases.
//
// PKS carrier (ACP) hits and NRPS thiolation (T) hits share conserved
// domain families, as do thioester reductase (TR) and NRPS reductase (R)
// hits. In NRPS, and in the NRPS module of a hybrid after its first
// condensation (C) domain, ACP becomes T and TR becomes R. An epimerization
// (E) hit overlapping the C hit before it replaces that C hit.
var DefaultRelabeler = &Relabeler{
	SkipMarker:  "PKS",
	HybridLabel: "Hybrid",
	Pivot:       "C",
	Table: map[string]string{
		"ACP": "T",
		"TR":  "R",
	},
	MergeParent: "C",
	MergeChild:  "E",
	Threshold:   domain.DefaultThreshold,
}

// Relabeler rewrites domain labels of a classified synthase according to
// its lineage.
type Relabeler struct {
	// Table maps source labels to target labels.
	Table map[string]string
	// SkipMarker disables relabeling for synthases whose leading
	// classification label contains it.
	SkipMarker string
	// HybridLabel is the leading classification label of composite
	// synthases. Their hits are only relabeled from the first Pivot hit.
	HybridLabel string
	// Pivot is the label that starts the relabeled region of a hybrid.
	Pivot string
	// MergeParent and MergeChild name the labels folded by
	// [domain.MergeChildren].
	MergeParent string
	MergeChild  string
	// Threshold is the overlap threshold for merging.
	Threshold float64
}

// Apply relabels the domain hits of s in place. Unclassified synthases and
// synthases whose leading label contains SkipMarker are left unchanged.
func (r *Relabeler) Apply(s *Synthase) {
	typ := s.Type()
	if typ == "" || (r.SkipMarker != "" && strings.Contains(typ, r.SkipMarker)) {
		return
	}

	start := 0
	if typ == r.HybridLabel {
		start = len(s.Domains)

		for i, h := range s.Domains {
			if h.Label == r.Pivot {
				start = i
				break
			}
		}
	}

	relabeled := 0
	for _, h := range s.Domains[start:] {
		if to, ok := r.Table[h.Label]; ok {
			h.Label = to
			relabeled++
		}
	}

	before := len(s.Domains)
	s.Domains = domain.MergeChildren(s.Domains, r.MergeParent, r.MergeChild, r.Threshold)

	slog.Debug("relabeled domains",
		slog.String("header", s.Header),
		slog.String("type", typ),
		slog.Int("start", start),
		slog.Int("relabeled", relabeled),
		slog.Int("merged", before-len(s.Domains)),
	)
}
