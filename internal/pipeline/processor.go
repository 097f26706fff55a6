// Package pipeline implements the count-processor chain:
// a sequence of predicates/sinks that filter, aggregate, histogram and
// persist count records, run per-partition and cloned per worker.
package pipeline

import "github.com/shenwei356/dbgbuild/internal/kmer"

// Config carries the run-wide parameters a processor needs at Begin.
type Config struct {
	KmerSize     int
	NbBanks      int
	AbundanceMin uint64 // 0 means "auto", resolved by the histogram/cutoff pair
	AbundanceMax uint64
	Mode         AbundanceMode
}

// AbundanceMode selects how a per-bank count vector reduces to a
// keep/drop decision.
type AbundanceMode int

const (
	ModeSum AbundanceMode = iota
	ModeMin
	ModeMax
	ModeAll
	ModeOne
)

// Processor is one stage of the count-processor chain. Process sees
// records in ascending canonical-k-mer order within a partition.
type Processor interface {
	Begin(cfg Config) error
	BeginPart(pass, part int, cacheRecords int, name string) error
	Process(partID int, code kmer.Code, counts []uint16, sum uint64) (keep bool, err error)
	EndPart(partID int) error
	End() error
	// Clone returns a processor for a concurrent partition worker. A
	// clone's state is not folded back into the parent at End(): Histogram
	// clones start empty and are combined with Histogram.Merge, while Dump
	// and CutoffComputer return themselves.
	Clone() Processor
}

// Chain runs processors in order; the first to return keep=false
// short-circuits the remaining processors for that record.
type Chain struct {
	Processors []Processor
}

// Begin runs Begin on every processor in order.
func (c *Chain) Begin(cfg Config) error {
	for _, p := range c.Processors {
		if err := p.Begin(cfg); err != nil {
			return err
		}
	}
	return nil
}

// BeginPart runs BeginPart on every processor in order.
func (c *Chain) BeginPart(pass, part int, cacheRecords int, name string) error {
	for _, p := range c.Processors {
		if err := p.BeginPart(pass, part, cacheRecords, name); err != nil {
			return err
		}
	}
	return nil
}

// Process runs each processor until one drops the record or all keep it.
func (c *Chain) Process(partID int, code kmer.Code, counts []uint16, sum uint64) (bool, error) {
	for _, p := range c.Processors {
		keep, err := p.Process(partID, code, counts, sum)
		if err != nil {
			return false, err
		}
		if !keep {
			return false, nil
		}
	}
	return true, nil
}

// EndPart runs EndPart on every processor in order.
func (c *Chain) EndPart(partID int) error {
	for _, p := range c.Processors {
		if err := p.EndPart(partID); err != nil {
			return err
		}
	}
	return nil
}

// End runs End on every processor in order.
func (c *Chain) End() error {
	for _, p := range c.Processors {
		if err := p.End(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a chain of clones, one per processor, for a concurrent
// partition worker.
func (c *Chain) Clone() *Chain {
	out := make([]Processor, len(c.Processors))
	for i, p := range c.Processors {
		out[i] = p.Clone()
	}
	return &Chain{Processors: out}
}
