package kmer

// OrderKind selects how m-mers are ranked to pick a k-mer's minimizer.
type OrderKind int

const (
	// OrderLexForbidden ranks m-mers lexicographically but disqualifies
	// any m-mer starting with "AA" or "AC" unless no other candidate
	// exists in the window (KMC2-style).
	OrderLexForbidden OrderKind = iota
	// OrderFrequency ranks m-mers by ascending estimated frequency,
	// ties broken lexicographically.
	OrderFrequency
)

// Order ranks m-mer codes (values in [0, 4^m)) into a total order used to
// pick minimizers and to build the repartition table (C3).
type Order struct {
	Kind  OrderKind
	M     int
	freq  []uint64 // OrderFrequency: estimated frequency per m-mer code
	ranks []uint32 // OrderFrequency: precomputed dense rank per m-mer code
}

// NewLexOrder builds the lexicographic-with-forbidden-prefix order.
func NewLexOrder(m int) *Order {
	return &Order{Kind: OrderLexForbidden, M: m}
}

// NewFrequencyOrder builds a frequency-based order from sampled counts,
// indexed by raw m-mer code (freq must have length 4^m).
func NewFrequencyOrder(m int, freq []uint64) *Order {
	o := &Order{Kind: OrderFrequency, M: m, freq: freq}
	o.buildRanks()
	return o
}

func (o *Order) buildRanks() {
	n := len(o.freq)
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	// order by (freq ascending, code ascending) with the insertion sort
	// below; it's a one-time build cost.
	sortByFreqThenCode(idx, o.freq)
	ranks := make([]uint32, n)
	for rank, code := range idx {
		ranks[code] = uint32(rank)
	}
	o.ranks = ranks
}

func sortByFreqThenCode(idx []uint32, freq []uint64) {
	// insertion sort is adequate: called once, off the hot path, and n=4^m
	// is small for the typical m in [8,11] only when freq is pre-bucketed
	// by the caller; for larger m callers should pass a coarser estimate.
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 {
			a, b := idx[j-1], idx[j]
			if freq[a] < freq[b] || (freq[a] == freq[b] && a < b) {
				break
			}
			idx[j-1], idx[j] = idx[j], idx[j-1]
			j--
		}
	}
}

// isForbiddenPrefix reports whether the code's two leading bases (the two
// most significant 2-bit groups) are AA or AC.
func isForbiddenPrefix(code uint64, m int) bool {
	if m < 2 {
		return false
	}
	top := (code >> uint((m-2)*2)) & 0xF
	// AA = 0b0000, AC = 0b0001 (A=0,C=1 in the top two base slots)
	return top == 0x0 || top == 0x1
}

// Rank returns the order's rank for the given m-mer code: smaller is
// "more minimal". forbidden m-mers under OrderLexForbidden get a rank
// above every non-forbidden m-mer, so a forbidden code
// is only chosen when it is literally the only candidate.
func (o *Order) Rank(code uint64) uint64 {
	switch o.Kind {
	case OrderFrequency:
		if int(code) < len(o.ranks) {
			return uint64(o.ranks[code])
		}
		return ^uint64(0)
	default:
		// forbidden m-mers must rank above every non-forbidden one,
		// regardless of code value, so they are picked only when no
		// other candidate exists in the window.
		rank := code
		if isForbiddenPrefix(code, o.M) {
			rank |= uint64(1) << 40
		}
		return rank
	}
}
