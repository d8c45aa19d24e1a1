package synthase

import (
	"errors"
	"fmt"

	"github.com/macropower/synthaser/pkg/domain"
)

var (
	// ErrNoDomains indicates a synthase without domain hits.
	ErrNoDomains = errors.New("synthase has no domains")
	// ErrNoSequence indicates a synthase without a sequence.
	ErrNoSequence = errors.New("synthase has no sequence")
)

// Synthase is a query protein, its domain hits and its classification.
type Synthase struct {
	// Header identifies the query sequence.
	Header string `json:"header" jsonschema:"title=Header,minLength=1"`
	// Sequence is the amino acid sequence of the query.
	Sequence string `json:"sequence,omitempty" jsonschema:"title=Sequence"`
	// Domains holds the domain hits, ordered by start position.
	Domains []*domain.Hit `json:"domains" jsonschema:"title=Domains"`
	// Classification is the classification path, from most general to most
	// specific. It is empty for unclassified synthases.
	Classification []string `json:"classification,omitempty" jsonschema:"title=Classification"`
}

// New creates a new [Synthase].
func New(header, sequence string, hits ...*domain.Hit) *Synthase {
	if hits == nil {
		hits = []*domain.Hit{}
	}

	return &Synthase{
		Header:   header,
		Sequence: sequence,
		Domains:  hits,
	}
}

// Architecture returns the hyphen separated domain labels, e.g.
// "KS-AT-DH-ER-KR-ACP".
func (s *Synthase) Architecture() string {
	return domain.Architecture(s.Domains)
}

// Labels returns the label of every domain hit, in order.
func (s *Synthase) Labels() []string {
	return domain.Labels(s.Domains)
}

// Type returns the leading classification label, or an empty string if the
// synthase is unclassified.
func (s *Synthase) Type() string {
	if len(s.Classification) == 0 {
		return ""
	}

	return s.Classification[0]
}

// Length returns the length of the sequence.
func (s *Synthase) Length() int {
	return len(s.Sequence)
}

// Validate checks that the synthase has a header and valid hits.
func (s *Synthase) Validate() error {
	if s.Header == "" {
		return errors.New("header is required")
	}

	for i, h := range s.Domains {
		if h == nil {
			return fmt.Errorf("domain %d: %w: null", i, domain.ErrInvalidHit)
		}

		err := h.Validate()
		if err != nil {
			return fmt.Errorf("domain %d: %w", i, err)
		}
	}

	return nil
}

// FilterSameLabel removes redundant hits of the same label, keeping the
// longest hit of each overlapping group. Overlapping hits of different
// labels are kept.
func (s *Synthase) FilterSameLabel(threshold float64) {
	s.Domains = domain.DedupeByLabel(s.Domains, threshold)
}

// FilterOverlapping removes redundant hits regardless of label, keeping the
// longest hit of each overlapping group.
func (s *Synthase) FilterOverlapping(threshold float64) {
	s.Domains = domain.DedupeGlobal(s.Domains, threshold)
}

// Clone returns a deep copy of the synthase.
func (s *Synthase) Clone() *Synthase {
	c := *s
	c.Domains = domain.Clone(s.Domains)

	if s.Classification != nil {
		c.Classification = append([]string{}, s.Classification...)
	}

	return &c
}

func (s *Synthase) String() string {
	return fmt.Sprintf("%s (%s)", s.Header, s.Architecture())
}
