// Package counter implements the per-partition k-mer counting strategies:
// an open-addressing hash table for partitions that fit
// in memory, and a sort-and-collapse strategy for the general case.
package counter

import "github.com/shenwei356/dbgbuild/internal/kmer"

// maxAbundance is the saturating ceiling for a single bank's count.
const maxAbundance = 1<<16 - 1

// Record is one (canonical k-mer, per-bank abundance vector) pair, the
// unit the counter emits to the count-processor pipeline.
type Record struct {
	Kmer   kmer.Code
	Counts []uint16 // length nb_banks
}

// Sum returns the total abundance across all banks.
func (r Record) Sum() uint64 {
	var s uint64
	for _, c := range r.Counts {
		s += uint64(c)
	}
	return s
}

func bumpSaturating(counts []uint16, bank int) {
	if counts[bank] < maxAbundance {
		counts[bank]++
	}
}

func newCounts(nbBanks int) []uint16 {
	return make([]uint16, nbBanks)
}
