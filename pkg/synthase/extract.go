package synthase

import (
	"fmt"

	"github.com/macropower/synthaser/pkg/fasta"
)

// ExtractDomains returns the sequence covered by each domain hit, keyed by
// label. Sequences of the same label are in hit order.
func (s *Synthase) ExtractDomains() (map[string][]string, error) {
	if len(s.Domains) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Header, ErrNoDomains)
	}
	if s.Sequence == "" {
		return nil, fmt.Errorf("%s: %w", s.Header, ErrNoSequence)
	}

	out := make(map[string][]string)
	for _, h := range s.Domains {
		seq, err := h.Slice(s.Sequence)
		if err != nil {
			return nil, fmt.Errorf("%s: extract %s: %w", s.Header, h, err)
		}

		out[h.Label] = append(out[h.Label], seq)
	}

	return out, nil
}

// ExtractAll extracts the domain sequences of every synthase as FASTA
// records, keyed by label. Record headers have the form
// "<header>_<label>_<index>", where index counts hits of that label within
// the synthase from zero.
func ExtractAll(synthases []*Synthase) (map[string][]fasta.Record, error) {
	out := make(map[string][]fasta.Record)

	for _, s := range synthases {
		domains, err := s.ExtractDomains()
		if err != nil {
			return nil, err
		}

		for label, seqs := range domains {
			for i, seq := range seqs {
				out[label] = append(out[label], fasta.Record{
					Header:   fmt.Sprintf("%s_%s_%d", s.Header, label, i),
					Sequence: seq,
				})
			}
		}
	}

	return out, nil
}
