// Package partition implements the superk-mer partitioner: the
// repartition table, the pass scheduler, and the partitioner itself
// that splits reads into minimizer-bucketed superk-mers across P
// partitions.
package partition

import "github.com/shenwei356/dbgbuild/internal/kmer"

// Table maps every possible m-mer code (dense, size 4^m) to a partition
// id in [0, P), built once before pass 1.
type Table struct {
	m, p int
	ids  []uint32
}

// NewLexTable builds the table from the lexicographic-with-forbidden-
// prefix order plus `mod P`.
func NewLexTable(m, p int) *Table {
	order := kmer.NewLexOrder(m)
	n := 1 << uint(2*m)
	ids := make([]uint32, n)
	for code := 0; code < n; code++ {
		ids[code] = uint32(order.Rank(uint64(code)) % uint64(p))
	}
	return &Table{m: m, p: p, ids: ids}
}

// NewFrequencyTable builds the table from sampled per-m-mer frequencies,
// greedily assigning the most frequent m-mers first to whichever
// partition currently carries the least estimated load, balancing
// partition sizes.
func NewFrequencyTable(m, p int, freq []uint64) *Table {
	n := len(freq)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// descending by frequency; insertion sort is fine, this runs once on
	// a modest 4^m-sized table for the typical m in [8,11].
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && freq[order[j-1]] < freq[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	ids := make([]uint32, n)
	load := make([]uint64, p)
	for _, code := range order {
		best := 0
		for i := 1; i < p; i++ {
			if load[i] < load[best] {
				best = i
			}
		}
		ids[code] = uint32(best)
		load[best] += freq[code]
	}
	return &Table{m: m, p: p, ids: ids}
}

// PartitionOf returns the destination partition id for an m-mer code.
func (t *Table) PartitionOf(mmerCode uint64) uint32 {
	if int(mmerCode) >= len(t.ids) {
		return 0
	}
	return t.ids[mmerCode]
}

// NumPartitions returns P.
func (t *Table) NumPartitions() int { return t.p }
