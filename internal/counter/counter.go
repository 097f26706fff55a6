package counter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/store"
)

// ErrOverfull is returned by CountPartition when strat ran out of
// capacity partway through the partition. Its output must be discarded;
// the caller should retry the same partition from the start with a
// strategy that cannot overflow (RadixStrategy).
var ErrOverfull = errors.New("counter: strategy overfull, retry with a non-overflowing strategy")

// CountPartition drains every superk-mer record from r, re-expands each
// into its constituent k-mers via model, and accumulates one occurrence
// per canonical k-mer into strat under the given bank index. It does not
// sort or finalise; call strat.Finalize() once all banks have been fed.
// If strat becomes overfull partway through, CountPartition stops and
// returns ErrOverfull rather than silently continuing to drop records.
func CountPartition(r *store.Reader, model *kmer.Model, bank int, strat Strategy) error {
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "counter: reading partition")
		}
		model.Iterate(rec, func(e kmer.Event) {
			strat.Add(e.Canonical, bank)
		})
		if strat.Overfull() {
			return ErrOverfull
		}
	}
}
