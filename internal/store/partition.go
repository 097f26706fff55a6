package store

import (
	"container/heap"
	"fmt"

	"github.com/pkg/errors"
)

// Partitioned is a typed collection split across P parallel partitions,
// numbered 0..P-1 and addressed as "<base>.partitions.<i>".
type Partitioned struct {
	base       string
	backend    backend
	recordSize int
	writers    []*Collection
}

// CreatePartitioned opens P partitions for writing under base.
func CreatePartitioned(b backend, base string, p, recordSize int) (*Partitioned, error) {
	pt := &Partitioned{base: base, backend: b, recordSize: recordSize, writers: make([]*Collection, p)}
	for i := 0; i < p; i++ {
		c, err := CreateCollection(b, partitionID(base, i), recordSize, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "store: creating partition %d of %s", i, base)
		}
		pt.writers[i] = c
	}
	return pt, nil
}

func partitionID(base string, i int) string { return fmt.Sprintf("%s.partitions.%d", base, i) }

// Writer returns the writer-cache-backed collection for partition i.
func (p *Partitioned) Writer(i int) *Collection { return p.writers[i] }

// NumPartitions returns P.
func (p *Partitioned) NumPartitions() int { return len(p.writers) }

// SealAll flushes and seals every partition.
func (p *Partitioned) SealAll() error {
	for i, w := range p.writers {
		if err := w.Seal(); err != nil {
			return errors.Wrapf(err, "store: sealing partition %d", i)
		}
	}
	return nil
}

// OpenPartitioned reopens P sealed partitions for reading.
func OpenPartitioned(b backend, base string, p int) ([]*Reader, error) {
	readers := make([]*Reader, p)
	for i := 0; i < p; i++ {
		r, err := OpenPartition(b, base, i)
		if err != nil {
			return nil, err
		}
		readers[i] = r
	}
	return readers, nil
}

// OpenPartition reopens a single sealed partition i of a P-way
// partitioned collection, for re-reading it from the start (e.g. to
// retry a partition with a different counting strategy).
func OpenPartition(b backend, base string, i int) (*Reader, error) {
	r, err := OpenCollection(b, partitionID(base, i))
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening partition %d of %s", i, base)
	}
	return r, nil
}

// mergeItem is one partition's current head record in the merge heap.
type mergeItem struct {
	partition int
	record    []byte
}

type mergeHeap struct {
	items []mergeItem
	less  func(a, b []byte) bool
}

func (h *mergeHeap) Len() int { return len(h.items) }
func (h *mergeHeap) Less(i, j int) bool {
	return h.less(h.items[i].record, h.items[j].record)
}
func (h *mergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap) Push(x interface{}) { h.items = append(h.items, x.(mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// SortedMerge performs a k-way merge over readers whose own records are
// already individually ascending (each partition's count-processor output
// is emitted in ascending canonical-k-mer order), yielding
// the global ascending sequence without a global sort. less compares two
// raw records by their k-mer key.
func SortedMerge(readers []*Reader, less func(a, b []byte) bool) (*MergeIter, error) {
	h := &mergeHeap{less: less}
	for i, r := range readers {
		rec, err := r.Next()
		if err == nil {
			heap.Push(h, mergeItem{partition: i, record: rec})
		} else if !isEOF(err) {
			return nil, err
		}
	}
	heap.Init(h)
	return &MergeIter{readers: readers, heap: h}, nil
}

// MergeIter yields the sorted-merge sequence across partitions.
type MergeIter struct {
	readers []*Reader
	heap    *mergeHeap
}

// Next returns the next record in global ascending order, or io.EOF.
func (m *MergeIter) Next() ([]byte, int, error) {
	if m.heap.Len() == 0 {
		return nil, -1, errEOF
	}
	top := heap.Pop(m.heap).(mergeItem)
	next, err := m.readers[top.partition].Next()
	if err == nil {
		heap.Push(m.heap, mergeItem{partition: top.partition, record: next})
	} else if !isEOF(err) {
		return nil, -1, err
	}
	return top.record, top.partition, nil
}
