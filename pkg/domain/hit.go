package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHit indicates that a [Hit] does not satisfy 1 <= start <= end.
var ErrInvalidHit = errors.New("invalid domain hit")

// Hit is a single conserved domain hit on a subject sequence.
//
// Coordinates are 1-based and inclusive.
type Hit struct {
	// Label is the semantic domain type (e.g. "KS"). It may be renamed by
	// classification rules.
	Label string `json:"type" jsonschema:"title=Type,minLength=1"`
	// Family is the specific reference family that was matched (e.g.
	// "PKS_KS"). It is never renamed.
	Family string `json:"domain" jsonschema:"title=Domain Family"`
	// Start is the first position of the hit.
	Start int `json:"start" jsonschema:"title=Start,minimum=1"`
	// End is the last position of the hit.
	End int `json:"end" jsonschema:"title=End,minimum=1"`
}

// New creates a new [Hit].
func New(label, family string, start, end int) *Hit {
	return &Hit{
		Label:  label,
		Family: family,
		Start:  start,
		End:    end,
	}
}

// Validate checks the coordinate invariant of the hit.
func (h *Hit) Validate() error {
	if h.Start < 1 {
		return fmt.Errorf("%w: start %d is less than 1", ErrInvalidHit, h.Start)
	}
	if h.End < h.Start {
		return fmt.Errorf("%w: end %d is before start %d", ErrInvalidHit, h.End, h.Start)
	}

	return nil
}

// Span returns end - start. This is the length used for overlap thresholds
// and representative selection.
func (h *Hit) Span() int {
	return h.End - h.Start
}

// Slice returns the segment of sequence covered by the hit.
func (h *Hit) Slice(sequence string) (string, error) {
	if err := h.Validate(); err != nil {
		return "", err
	}
	if h.End > len(sequence) {
		return "", fmt.Errorf("%w: end %d exceeds sequence length %d", ErrInvalidHit, h.End, len(sequence))
	}

	return sequence[h.Start-1 : h.End], nil
}

// Clone returns a copy of the hit.
func (h *Hit) Clone() *Hit {
	c := *h
	return &c
}

func (h *Hit) String() string {
	return fmt.Sprintf("%s [%s] %d-%d", h.Family, h.Label, h.Start, h.End)
}

// Labels returns the label of every hit, in order.
func Labels(hits []*Hit) []string {
	labels := make([]string, len(hits))
	for i, h := range hits {
		labels[i] = h.Label
	}

	return labels
}

// Architecture returns the hyphen separated labels of hits, e.g.
// "KS-AT-DH-ER-KR-ACP".
func Architecture(hits []*Hit) string {
	return strings.Join(Labels(hits), "-")
}

// Clone returns a deep copy of hits.
func Clone(hits []*Hit) []*Hit {
	if hits == nil {
		return nil
	}

	out := make([]*Hit, len(hits))
	for i, h := range hits {
		out[i] = h.Clone()
	}

	return out
}
