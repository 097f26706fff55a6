package partition

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/shenwei356/dbgbuild/internal/bank"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/store"
)

// Superkmer is a maximal run of consecutive k-mers sharing the same
// minimizer, the unit the partitioner writes to each destination
// partition.
type Superkmer struct {
	Seq []byte
}

// Progress is the subset of progressbar.Bar the partitioner drives.
type Progress interface {
	Increment(delta int)
	Close()
}

type superkmerMsg struct {
	partition uint32
	seq       []byte
}

// Partitioner splits a bank's reads into minimizer-bucketed superk-mers
// across the partitioner's P destination partitions.
type Partitioner struct {
	Model      *kmer.Model
	Table      *Table
	Scheduler  *Scheduler
	NbWorkers  int
	Progress   Progress
}

// New builds a Partitioner over the given model, repartition table and
// pass scheduler.
func New(model *kmer.Model, table *Table, sched *Scheduler, nbWorkers int) *Partitioner {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	return &Partitioner{Model: model, Table: table, Scheduler: sched, NbWorkers: nbWorkers}
}

// Run executes every pass over b, writing superk-mers into pt. ctx
// cancellation is honoured between reads: in-flight reads
// complete, writers flush, then Run returns ctx.Err().
func (p *Partitioner) Run(ctx context.Context, b bank.Bank, pt *store.Partitioned) error {
	passes := p.Scheduler.Passes()
	for pass := 0; pass < passes; pass++ {
		if err := p.runPass(ctx, b, pt, pass); err != nil {
			return errors.Wrapf(err, "partition: pass %d", pass)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (p *Partitioner) runPass(ctx context.Context, b bank.Bank, pt *store.Partitioned, pass int) error {
	src, err := b.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	reads := make(chan bank.Read, p.NbWorkers*4)
	superkmers := make(chan superkmerMsg, p.NbWorkers*4)
	var workersErr error
	var workersErrOnce sync.Once

	// writer goroutine: the single synchroniser serialising flushes to
	// the underlying partition files.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range superkmers {
			if err := pt.Writer(int(msg.partition)).Append(msg.seq); err != nil {
				workersErrOnce.Do(func() { workersErr = err })
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.NbWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(reads, superkmers, pass)
		}()
	}

	// reader: feeds the shared read channel; this is the "dispatcher"
	// assigning a contiguous slice of the iterator to each worker,
	// realised here as a single producer / many consumers fan-out.
readLoop:
	for {
		select {
		case <-ctx.Done():
			break readLoop
		default:
		}
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			close(reads)
			wg.Wait()
			close(superkmers)
			<-writerDone
			return err
		}
		select {
		case reads <- r:
		case <-ctx.Done():
			break readLoop
		}
	}
	close(reads)
	wg.Wait()
	close(superkmers)
	<-writerDone
	if workersErr != nil {
		return workersErr
	}
	if p.Progress != nil {
		p.Progress.Close()
	}
	return nil
}

// worker runs the k-mer model over each read and accumulates superk-mers,
// flushing one each time the minimizer changes (or the read ends), only
// emitting it if its destination partition is scheduled for this pass.
func (p *Partitioner) worker(reads <-chan bank.Read, out chan<- superkmerMsg, pass int) {
	k := p.Model.K
	for r := range reads {
		if len(r.Seq) < k {
			continue
		}
		var run []byte
		var runStartMinimizer uint64
		var haveRun bool
		flush := func() {
			if !haveRun || len(run) < k {
				run = nil
				haveRun = false
				return
			}
			part := p.Table.PartitionOf(runStartMinimizer)
			if p.Scheduler.ActiveInPass(pass, part) {
				seq := make([]byte, len(run))
				copy(seq, run)
				out <- superkmerMsg{partition: part, seq: seq}
				if p.Progress != nil {
					p.Progress.Increment(1)
				}
			}
			run = nil
			haveRun = false
		}
		p.Model.Iterate(r.Seq, func(e kmer.Event) {
			if e.IsFirst {
				flush()
			}
			if e.MinimChang && haveRun {
				// the next superk-mer starts with this k-mer, whose first
				// k-1 bases are the trailing bases of the one just flushed
				flush()
			}
			if !haveRun {
				run = append(run, r.Seq[e.Pos:e.Pos+k]...)
				runStartMinimizer = e.MinimizerCode
				haveRun = true
			} else {
				run = append(run, r.Seq[e.Pos+k-1])
			}
		})
		flush()
	}
}
