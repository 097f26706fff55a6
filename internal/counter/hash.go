package counter

import (
	"github.com/cespare/xxhash"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

func nextPow2(n int64) int {
	if n < 2 {
		return 2
	}
	p := 1
	for int64(p) < n {
		p <<= 1
	}
	return p
}

// HashStrategy is the open-addressing counting strategy:
// linear probing on hash(k-mer) mod capacity, capacity a power of two at
// least 2x the expected number of distinct k-mers.
type HashStrategy struct {
	nbBanks  int
	capacity int
	mask     uint64
	used     []bool
	codes    []kmer.Code
	counts   [][]uint16
	n        int
	overfull bool
}

// NewHashStrategy sizes the table for expectedDistinct k-mers.
func NewHashStrategy(expectedDistinct int64, nbBanks int) *HashStrategy {
	cap := nextPow2(2 * expectedDistinct)
	return &HashStrategy{
		nbBanks:  nbBanks,
		capacity: cap,
		mask:     uint64(cap - 1),
		used:     make([]bool, cap),
		codes:    make([]kmer.Code, cap),
		counts:   make([][]uint16, cap),
	}
}

func hashCode(c kmer.Code) uint64 {
	b := c.Bytes()
	return xxhash.Sum64(b)
}

// Overfull reports whether the table exceeded a safe load factor and the
// caller should fall back to the vector-sort strategy.
func (s *HashStrategy) Overfull() bool { return s.overfull }

// Add records one occurrence of the canonical k-mer code in the given
// bank index.
func (s *HashStrategy) Add(code kmer.Code, bank int) {
	if s.overfull {
		return
	}
	h := hashCode(code) & s.mask
	for {
		if !s.used[h] {
			s.used[h] = true
			s.codes[h] = code
			s.counts[h] = newCounts(s.nbBanks)
			bumpSaturating(s.counts[h], bank)
			s.n++
			if s.n > s.capacity*3/4 {
				s.overfull = true
			}
			return
		}
		if s.codes[h].Equal(code) {
			bumpSaturating(s.counts[h], bank)
			return
		}
		h = (h + 1) & s.mask
	}
}

// Finalize returns the occupied slots as Records sorted by ascending
// canonical k-mer code, emitted in ascending canonical k-mer order per
// partition.
func (s *HashStrategy) Finalize() []Record {
	out := make([]Record, 0, s.n)
	for i := 0; i < s.capacity; i++ {
		if s.used[i] {
			out = append(out, Record{Kmer: s.codes[i], Counts: s.counts[i]})
		}
	}
	sortRecords(out)
	return out
}
