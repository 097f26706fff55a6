package config

import "github.com/pkg/errors"

// ErrResourceLimit is returned, before any work starts, when no (passes,
// partitions) choice fits the memory budget.
var ErrResourceLimit = errors.New("config: memory/disk budget insufficient for any valid (passes, partitions) choice")

// Plan is the pass/partition schedule computed once before the
// superk-mer partitioner runs.
type Plan struct {
	Passes                int
	Partitions            int
	NbCoresPerPartition    int
	NbPartitionsInParallel int
	PerPartitionBudgetMB   int
	WriterCacheBytes       int
}

// MaxPassesConsidered bounds the search for a feasible plan.
const MaxPassesConsidered = 32

// Plan chooses the number of passes Np and partitions P so that
// volume/(Np*P) fits a per-partition memory budget of MaxMemoryMB
// divided by the number of partitions counted in parallel. It also bounds the partitioner's
// writer caches so that nb_threads * P * cache_size stays within the
// same budget, forcing more passes rather than overrunning it.
func (o *Options) Plan(estimatedKmers int64) (*Plan, error) {
	if o.MaxMemoryMB <= 0 {
		return nil, errors.Wrap(ErrResourceLimit, "config: max-memory must be positive")
	}
	nbCores := o.NbCores
	if nbCores < 1 {
		nbCores = 1
	}
	// a k-mer's in-memory footprint during hash counting: 8 bytes key +
	// 2 bytes saturating count, rounded up for open-addressing load factor.
	const bytesPerKmer = 16

	for passes := 1; passes <= MaxPassesConsidered; passes++ {
		for partitions := 1; partitions <= 4096; partitions++ {
			perPartitionKmers := estimatedKmers / int64(passes*partitions)
			if perPartitionKmers < 1 {
				perPartitionKmers = 1
			}
			nbCoresPerPartition := nbCores
			nbPartitionsInParallel := 1
			if partitions < nbCores {
				nbPartitionsInParallel = partitions
				nbCoresPerPartition = nbCores / partitions
				if nbCoresPerPartition < 1 {
					nbCoresPerPartition = 1
				}
			} else {
				nbPartitionsInParallel = nbCores
			}
			perPartitionBudgetMB := o.MaxMemoryMB / nbPartitionsInParallel
			neededMB := int(perPartitionKmers*bytesPerKmer/(1<<20)) + 1
			if neededMB > perPartitionBudgetMB {
				continue
			}
			cacheBytes := 1 << 20 // writer cache default
			totalCacheMB := (nbCores * partitions * cacheBytes) / (1 << 20)
			if totalCacheMB > o.MaxMemoryMB {
				continue
			}
			return &Plan{
				Passes:                 passes,
				Partitions:             partitions,
				NbCoresPerPartition:    nbCoresPerPartition,
				NbPartitionsInParallel: nbPartitionsInParallel,
				PerPartitionBudgetMB:   perPartitionBudgetMB,
				WriterCacheBytes:       cacheBytes,
			}, nil
		}
	}
	return nil, ErrResourceLimit
}
