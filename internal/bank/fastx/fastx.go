// Package fastx is the default concrete Bank adapter, reading FASTA/FASTQ
// files through github.com/shenwei356/bio the way unikmer and kmcp's own
// commands do (fastx.NewDefaultReader + record.Seq.Seq), so the CLI has a
// working end-to-end default even though parsing itself is out of scope
// for this module's own code.
package fastx

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/shenwei356/dbgbuild/internal/bank"
)

func init() {
	// the k-mer model already rejects/handles non-ACGTN bytes as breaks,
	// so skip bio's own (slower) alphabet validation.
	seq.ValidateSeq = false
}

// Bank adapts one or more FASTA/FASTQ file paths to bank.Bank.
type Bank struct {
	Paths []string
}

func New(paths ...string) *Bank { return &Bank{Paths: paths} }

func (b *Bank) Open() (bank.Source, error) {
	return &source{paths: b.Paths}, nil
}

func (b *Bank) EstimateNumSequences() (int64, error) {
	var total int64
	for _, p := range b.Paths {
		r, err := fastx.NewDefaultReader(p)
		if err != nil {
			return 0, errors.Wrapf(err, "bank: opening %s", p)
		}
		for {
			_, err := r.Read()
			if err != nil {
				break
			}
			total++
		}
	}
	return total, nil
}

type source struct {
	paths  []string
	idx    int
	reader *fastx.Reader
}

func (s *source) Next() (bank.Read, error) {
	for {
		if s.reader == nil {
			if s.idx >= len(s.paths) {
				return bank.Read{}, io.EOF
			}
			r, err := fastx.NewDefaultReader(s.paths[s.idx])
			if err != nil {
				return bank.Read{}, errors.Wrapf(err, "bank: opening %s", s.paths[s.idx])
			}
			s.reader = r
			s.idx++
		}
		record, err := s.reader.Read()
		if err != nil {
			if err == io.EOF {
				s.reader = nil
				continue
			}
			return bank.Read{}, errors.Wrap(err, "bank: reading record")
		}
		return bank.Read{Name: string(record.Name), Seq: record.Seq.Seq}, nil
	}
}

func (s *source) Close() error { return nil }
