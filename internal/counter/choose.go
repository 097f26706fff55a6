package counter

import "github.com/shenwei356/dbgbuild/internal/kmer"

// Strategy is the common counting strategy contract: accumulate
// occurrences, then emit sorted records. Overfull reports whether the
// strategy ran out of capacity partway through and further Add calls
// were dropped, so the caller must discard its output and retry the
// partition with a strategy that cannot overflow.
type Strategy interface {
	Add(code kmer.Code, bank int)
	Finalize() []Record
	Overfull() bool
}

// recordsByCode sorts Records ascending by canonical k-mer code. The hash
// strategy's Finalize sorts with sortRecords instead, and the radix
// strategy is already sorted by its underlying occurrence sort.
type recordsByCode []Record

func (r recordsByCode) Len() int           { return len(r) }
func (r recordsByCode) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r recordsByCode) Less(i, j int) bool { return r[i].Kmer.Cmp(r[j].Kmer) < 0 }

func sortRecords(r []Record) {
	// insertion sort: the occupied fraction of a hash table is typically
	// small relative to partition size, and this keeps the strategy
	// free of an extra dependency on the vector-sort path.
	for i := 1; i < len(r); i++ {
		j := i
		for j > 0 && r[j-1].Kmer.Cmp(r[j].Kmer) > 0 {
			r[j-1], r[j] = r[j], r[j-1]
			j--
		}
	}
}

// bytesPerDistinctKmer estimates per-slot memory for the hash strategy
// (code words + count vector overhead), used by Choose.
const bytesPerDistinctKmer = 48

// Choose selects the counting strategy for a partition: open-addressing
// hash when the partition's estimated distinct k-mer set fits the
// per-partition memory budget, radix/vector-sort otherwise.
func Choose(estimatedDistinct int64, nbBanks int, budgetBytes int64) Strategy {
	if estimatedDistinct > 0 && estimatedDistinct*bytesPerDistinctKmer*2 <= budgetBytes {
		return NewHashStrategy(estimatedDistinct, nbBanks)
	}
	return NewRadixStrategy(nbBanks)
}
