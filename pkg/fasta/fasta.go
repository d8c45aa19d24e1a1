// Package fasta formats sequences as FASTA records.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultWrap is the default number of residues per sequence line.
const DefaultWrap = 80

// Record is a single FASTA record.
type Record struct {
	Header   string `json:"header"`
	Sequence string `json:"sequence"`
}

// Wrap splits sequence into lines of at most limit characters. A limit
// less than 1 disables wrapping.
func Wrap(sequence string, limit int) string {
	if limit < 1 || len(sequence) <= limit {
		return sequence
	}

	var sb strings.Builder

	sb.Grow(len(sequence) + len(sequence)/limit)

	for i := 0; i < len(sequence); i += limit {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(sequence[i:min(i+limit, len(sequence))])
	}

	return sb.String()
}

// Format returns the record as ">header\nsequence", with the sequence
// wrapped at limit characters per line.
func Format(header, sequence string, limit int) string {
	return ">" + header + "\n" + Wrap(sequence, limit)
}

func (r Record) String() string {
	return Format(r.Header, r.Sequence, DefaultWrap)
}

// Write writes records to w, one per line group, wrapping sequences at
// limit characters per line.
func Write(w io.Writer, records []Record, limit int) error {
	bw := bufio.NewWriter(w)

	for _, r := range records {
		_, err := fmt.Fprintln(bw, Format(r.Header, r.Sequence, limit))
		if err != nil {
			return fmt.Errorf("write record %q: %w", r.Header, err)
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}
