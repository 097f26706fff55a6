package counter

import (
	"github.com/twotwotwo/sorts"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// occurrence is one observed (k-mer, bank) pair, the unit the vector-sort
// strategy accumulates before collapsing runs.
type occurrence struct {
	code kmer.Code
	bank int
}

type occurrences []occurrence

func (o occurrences) Len() int      { return len(o) }
func (o occurrences) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o occurrences) Less(i, j int) bool {
	return o[i].code.Cmp(o[j].code) < 0
}
func (o occurrences) Key(i int) uint64 {
	// first storage word of the code; sorts.Quicksort orders through
	// Less/Swap only and does not call Key.
	return o[i].code.W[0]
}

// RadixStrategy is the general-case counting strategy: read
// the whole partition into a vector of (k-mer, bank) occurrences, sort,
// then scan collapsing runs into (value, counts) records.
type RadixStrategy struct {
	nbBanks int
	occs    occurrences
}

// NewRadixStrategy creates an empty vector-sort strategy.
func NewRadixStrategy(nbBanks int) *RadixStrategy {
	return &RadixStrategy{nbBanks: nbBanks, occs: make(occurrences, 0, 1024)}
}

// Add records one occurrence of the canonical k-mer code in bank.
func (s *RadixStrategy) Add(code kmer.Code, bank int) {
	s.occs = append(s.occs, occurrence{code: code, bank: bank})
}

// Overfull always reports false: the vector-sort strategy grows its
// slice on demand and never drops an occurrence.
func (s *RadixStrategy) Overfull() bool { return false }

// Finalize sorts all occurrences and collapses consecutive runs of the
// same k-mer into one Record, in ascending canonical-k-mer order.
func (s *RadixStrategy) Finalize() []Record {
	if len(s.occs) == 0 {
		return nil
	}
	sorts.Quicksort(s.occs)

	out := make([]Record, 0, len(s.occs)/2+1)
	i := 0
	for i < len(s.occs) {
		j := i
		counts := newCounts(s.nbBanks)
		code := s.occs[i].code
		for j < len(s.occs) && s.occs[j].code.Equal(code) {
			bumpSaturating(counts, s.occs[j].bank)
			j++
		}
		out = append(out, Record{Kmer: code, Counts: counts})
		i = j
	}
	return out
}
