package kmer

// Event is reported to the Iterate handler for every valid k-mer.
type Event struct {
	Code       Code
	Canonical  Code
	Strand     bool // true if Canonical is the reverse complement
	Pos        int  // sequence offset of the k-mer's first base
	IsFirst    bool // first valid k-mer after a break (start of read or after N)
	Minimizer     uint64 // order-rank, for change detection only
	MinimizerCode uint64 // dense m-mer code, for repartition table lookup
	MinimPos      int
	MinimChang    bool
}

// Model binds a k-mer length, a minimizer length and order together and
// exposes the rolling iteration contract from
type Model struct {
	K, M      int
	Precision Precision
	Order     *Order
}

// NewModel validates k/m and selects the storage precision.
func NewModel(k, m int, order *Order) (*Model, error) {
	prec, err := SelectPrecision(k)
	if err != nil {
		return nil, err
	}
	if m <= 0 || m >= k {
		return nil, errInvalidMinimizer(m, k)
	}
	return &Model{K: k, M: m, Precision: prec, Order: order}, nil
}

func errInvalidMinimizer(m, k int) error {
	return &invalidErr{msg: "kmer: minimizer size must satisfy 0 < m < k", m: m, k: k}
}

type invalidErr struct {
	msg  string
	m, k int
}

func (e *invalidErr) Error() string { return e.msg }

// Handler is invoked once per valid k-mer emitted by Iterate.
type Handler func(Event)

// Iterate walks seq, yielding every valid k-mer (one that does not span an
// N or unrecognised base) in order. It restarts the k-mer window at the
// next valid base after a break and reports IsFirst on the first emitted
// k-mer of each run. Minimizer tracking resets on every break.
func (m *Model) Iterate(seq []byte, handler Handler) {
	k := m.K
	if len(seq) < k {
		return
	}
	tracker := NewMinimizerTracker(k, m.M, m.Order)

	var code Code
	validRun := 0 // count of consecutive valid bases accumulated
	start := 0    // sequence offset where the current run of valid bases began
	isFirstPending := true

	for i := 0; i < len(seq); i++ {
		b := Encode(seq[i])
		if b == baseN {
			validRun = 0
			tracker.Reset()
			isFirstPending = true
			continue
		}
		if validRun == 0 {
			start = i
			code = Zero(k)
		}
		code = code.Next(b)
		validRun++
		if validRun < k {
			continue
		}
		kmerStart := i - k + 1
		// sanity: kmerStart must equal start when validRun==k on the
		// first emission of this run, and advances by 1 thereafter.
		if kmerStart < start {
			kmerStart = start
		}
		canon, strand := code.Canonical()
		val, mcode, pos, changed := tracker.Observe(code, kmerStart)
		handler(Event{
			Code:          code,
			Canonical:     canon,
			Strand:        strand,
			Pos:           kmerStart,
			IsFirst:       isFirstPending,
			Minimizer:     val,
			MinimizerCode: mcode,
			MinimPos:      pos,
			MinimChang:    changed,
		})
		isFirstPending = false
	}
}

// Neighbours returns the four possible successor codes of c by appending
// each base A,C,T,G in turn; predecessors are not included (Code.Prev
// gives those).
func Neighbours(c Code, k int) [4]Code {
	var out [4]Code
	for b := int8(0); b < 4; b++ {
		out[b] = c.Next(b)
	}
	return out
}
